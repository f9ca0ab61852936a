// Package controller owns the hardware readings shown on screen. It
// subscribes to battery and sensor feeds while active, and republishes a
// freshly formatted summary after every change.
package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/Dicklesworthstone/hwinfo/internal/info"
	"github.com/Dicklesworthstone/hwinfo/internal/model"
	"github.com/Dicklesworthstone/hwinfo/internal/platform"
)

// ErrAlreadyActive is returned by Activate on an active controller.
var ErrAlreadyActive = errors.New("controller already active")

// State is the controller lifecycle state.
type State int32

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Surface receives every formatted summary.
type Surface interface {
	Publish(model.Summary)
}

// Options tune a Controller. The zero value shows every field in English.
type Options struct {
	Fields     []model.Field
	Aggregator *info.Aggregator
	// Dedup coalesces triggers that arrive while a pass is in flight into
	// one follow-up pass.
	Dedup  bool
	Logger *zerolog.Logger
	Now    func() time.Time
}

// Controller is the presentation controller.
type Controller struct {
	plat    platform.Platform
	surface Surface
	fields  []model.Field
	agg     *info.Aggregator
	dedup   bool
	log     zerolog.Logger
	now     func() time.Time
	worker  *worker

	mu       sync.Mutex // serializes Activate/Deactivate
	state    atomic.Int32
	current  atomic.Pointer[activation]
	readings model.Readings // handed to the loop while active
}

// activation is everything that lives between Activate and Deactivate.
type activation struct {
	ctx     context.Context
	cancel  context.CancelFunc
	events  chan event
	results chan model.Summary
	done    chan struct{}
	subs    []platform.Subscription

	// Owned by the loop goroutine.
	readings   model.Readings
	metrics    model.DisplayMetrics
	metricsErr error
	inFlight   bool
	dirty      bool
}

type eventKind int

const (
	batteryChanged eventKind = iota
	sensorChanged
)

type event struct {
	kind    eventKind
	battery platform.BatteryEvent
	sensor  platform.SensorEvent
}

func (a *activation) send(ev event) {
	select {
	case a.events <- ev:
	case <-a.ctx.Done():
	}
}

func New(plat platform.Platform, surface Surface, opts Options) *Controller {
	if plat.Sensors == nil {
		plat.Sensors = platform.NoSensors{}
	}
	if plat.Power == nil {
		plat.Power = platform.NoPower{}
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = model.AllFields()
	}
	agg := opts.Aggregator
	if agg == nil {
		agg = info.New(language.English)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	base := zerolog.Nop()
	if opts.Logger != nil {
		base = *opts.Logger
	}
	logger := base.With().Str("component", "controller").Logger()
	return &Controller{
		plat:    plat,
		surface: surface,
		fields:  model.Normalize(fields),
		agg:     agg,
		dedup:   opts.Dedup,
		log:     logger,
		now:     now,
		worker:  newWorker(),
	}
}

func (c *Controller) State() State { return State(c.state.Load()) }

// Fields returns the configured field list in display order.
func (c *Controller) Fields() []model.Field { return append([]model.Field(nil), c.fields...) }

// Activate captures the display metrics, subscribes to every available feed
// and publishes an initial summary.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.State() == Active {
		return ErrAlreadyActive
	}

	ctx, cancel := context.WithCancel(ctx)
	a := &activation{
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan event),
		results:  make(chan model.Summary),
		done:     make(chan struct{}),
		readings: c.readings,
	}

	a.metrics, a.metricsErr = c.displayMetrics(ctx)
	c.subscribe(a)

	c.current.Store(a)
	c.state.Store(int32(Active))
	go c.loop(a)

	c.log.Info().
		Int("subscriptions", len(a.subs)).
		Bool("dedup", c.dedup).
		Msg("activated")
	return nil
}

// Deactivate releases every subscription and waits for in-flight passes.
// Nothing is published afterwards until the next Activate.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := c.current.Load()
	if a == nil {
		return
	}

	c.current.Store(nil)
	a.cancel()
	for _, sub := range a.subs {
		sub.Unsubscribe()
	}
	<-a.done
	c.worker.Wait()

	c.readings = a.readings
	c.state.Store(int32(Inactive))
	c.log.Info().Msg("deactivated")
}

// OnBattery injects a battery broadcast. It is dropped while inactive.
func (c *Controller) OnBattery(ev platform.BatteryEvent) {
	if a := c.current.Load(); a != nil {
		a.send(event{kind: batteryChanged, battery: ev})
	}
}

// OnSensor injects a sensor sample. It is dropped while inactive.
func (c *Controller) OnSensor(ev platform.SensorEvent) {
	if a := c.current.Load(); a != nil {
		a.send(event{kind: sensorChanged, sensor: ev})
	}
}

func (c *Controller) displayMetrics(ctx context.Context) (model.DisplayMetrics, error) {
	if c.plat.Display == nil {
		return model.DisplayMetrics{}, platform.ErrUnavailable
	}
	m, err := c.plat.Display.Metrics(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("display metrics unavailable")
	}
	return m, err
}

// subscribe registers every available feed. Feeds that are missing, or
// fail to subscribe, leave their reading absent for the whole activation.
func (c *Controller) subscribe(a *activation) {
	if c.plat.Power.Available() {
		sub, err := c.plat.Power.Subscribe(a.ctx, func(ev platform.BatteryEvent) {
			a.send(event{kind: batteryChanged, battery: ev})
		})
		if err != nil {
			c.log.Warn().Err(err).Msg("battery subscription failed")
			a.readings.BatteryTemp = model.Absent()
		} else {
			a.subs = append(a.subs, sub)
			if a.readings.BatteryTemp.IsAbsent() {
				a.readings.BatteryTemp = model.Reading{}
			}
		}
	} else {
		a.readings.BatteryTemp = model.Absent()
	}

	for _, kind := range model.EnvironmentalSensors {
		r := a.readings.Sensor(kind)
		if !c.plat.Sensors.Available(kind) {
			c.log.Debug().Stringer("sensor", kind).Msg("sensor not present")
			*r = model.Absent()
			continue
		}
		sub, err := c.plat.Sensors.Subscribe(a.ctx, kind, func(ev platform.SensorEvent) {
			a.send(event{kind: sensorChanged, sensor: ev})
		})
		if err != nil {
			c.log.Warn().Err(err).Stringer("sensor", kind).Msg("sensor subscription failed")
			*r = model.Absent()
			continue
		}
		a.subs = append(a.subs, sub)
		if r.IsAbsent() {
			*r = model.Reading{}
		}
	}
}

// loop is the only goroutine touching a.readings while active.
func (c *Controller) loop(a *activation) {
	defer close(a.done)
	c.trigger(a)
	for {
		select {
		case ev := <-a.events:
			if c.apply(&a.readings, ev) {
				c.trigger(a)
			}
		case s := <-a.results:
			c.surface.Publish(s)
			a.inFlight = false
			if a.dirty {
				a.dirty = false
				c.trigger(a)
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// apply folds one event into the readings and reports whether anything
// changed.
func (c *Controller) apply(r *model.Readings, ev event) bool {
	switch ev.kind {
	case batteryChanged:
		if r.BatteryTemp.IsAbsent() {
			return false
		}
		r.BatteryTemp = model.Value(ev.battery.TemperatureTenths / 10)
		return true
	case sensorChanged:
		field := r.Sensor(ev.sensor.Kind)
		if field == nil {
			c.log.Debug().Int("kind", int(ev.sensor.Kind)).Msg("ignoring unknown sensor")
			return false
		}
		if field.IsAbsent() {
			return false
		}
		*field = model.Value(int(ev.sensor.Value))
		return true
	}
	return false
}

func (c *Controller) trigger(a *activation) {
	if c.dedup && a.inFlight {
		a.dirty = true
		return
	}
	a.inFlight = true
	in := passInput{
		readings:   a.readings,
		metrics:    a.metrics,
		metricsErr: a.metricsErr,
	}
	c.worker.Go(a.ctx, func(ctx context.Context) {
		s := c.build(ctx, in)
		select {
		case a.results <- s:
		case <-ctx.Done():
		}
	})
}
