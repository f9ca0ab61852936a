package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
	"github.com/Dicklesworthstone/hwinfo/internal/platform"
)

type fakeDevice struct {
	brand string
	err   error
}

func (d fakeDevice) Brand(context.Context) (string, error) { return d.brand, d.err }

type fakeDisplay struct {
	m   model.DisplayMetrics
	err error
}

func (d fakeDisplay) Metrics(context.Context) (model.DisplayMetrics, error) { return d.m, d.err }

type fakeCPU struct{}

func (fakeCPU) Family(context.Context) string            { return "ARM" }
func (fakeCPU) Count(context.Context) (int, error)       { return 8, nil }
func (fakeCPU) Features(context.Context) (string, error) { return "neon vfpv3", nil }

// fakeCameras counts opens and releases. A non-nil gate blocks each query
// until it is closed.
type fakeCameras struct {
	sizes    []model.Size
	openErr  error
	gate     chan struct{}
	opens    atomic.Int32
	releases atomic.Int32
}

func (f *fakeCameras) Open(context.Context) (platform.Camera, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens.Add(1)
	return &fakeCamera{f: f}, nil
}

type fakeCamera struct{ f *fakeCameras }

func (c *fakeCamera) SupportedPictureSizes() ([]model.Size, error) {
	if c.f.gate != nil {
		<-c.f.gate
	}
	return c.f.sizes, nil
}

func (c *fakeCamera) StopPreview() error { return nil }

func (c *fakeCamera) Release() error {
	c.f.releases.Add(1)
	return nil
}

type fakeSub struct{ release func() }

func (s fakeSub) Unsubscribe() { s.release() }

type fakeSensors struct {
	mu        sync.Mutex
	available map[model.SensorKind]bool
	handlers  map[model.SensorKind]func(platform.SensorEvent)
}

func newFakeSensors(kinds ...model.SensorKind) *fakeSensors {
	s := &fakeSensors{
		available: make(map[model.SensorKind]bool),
		handlers:  make(map[model.SensorKind]func(platform.SensorEvent)),
	}
	for _, k := range kinds {
		s.available[k] = true
	}
	return s
}

func (s *fakeSensors) Available(kind model.SensorKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available[kind]
}

func (s *fakeSensors) Subscribe(_ context.Context, kind model.SensorKind, fn func(platform.SensorEvent)) (platform.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = fn
	return fakeSub{release: func() {
		s.mu.Lock()
		delete(s.handlers, kind)
		s.mu.Unlock()
	}}, nil
}

func (s *fakeSensors) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

func (s *fakeSensors) emit(kind model.SensorKind, v float64) {
	s.mu.Lock()
	fn := s.handlers[kind]
	s.mu.Unlock()
	if fn != nil {
		fn(platform.SensorEvent{Kind: kind, Value: v})
	}
}

type fakePower struct {
	mu        sync.Mutex
	available bool
	handler   func(platform.BatteryEvent)
}

func (p *fakePower) Available() bool { return p.available }

func (p *fakePower) Subscribe(_ context.Context, fn func(platform.BatteryEvent)) (platform.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = fn
	return fakeSub{release: func() {
		p.mu.Lock()
		p.handler = nil
		p.mu.Unlock()
	}}, nil
}

func (p *fakePower) subscribed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler != nil
}

func (p *fakePower) emit(tenths int) {
	p.mu.Lock()
	fn := p.handler
	p.mu.Unlock()
	if fn != nil {
		fn(platform.BatteryEvent{TemperatureTenths: tenths})
	}
}

// recorder is a Surface remembering every publish.
type recorder struct {
	mu      sync.Mutex
	history []model.Summary
}

func (r *recorder) Publish(s model.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, s)
}

func (r *recorder) all() []model.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Summary(nil), r.history...)
}

func (r *recorder) last() (model.Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return model.Summary{}, false
	}
	return r.history[len(r.history)-1], true
}

// waitFor blocks until the latest publish has f rendered as want.
func (r *recorder) waitFor(t *testing.T, f model.Field, want string) model.Summary {
	t.Helper()
	var got model.Summary
	require.Eventually(t, func() bool {
		s, ok := r.last()
		if !ok {
			return false
		}
		v, _ := s.Lookup(f)
		got = s
		return v == want
	}, 2*time.Second, time.Millisecond, "waiting for %s = %q", f, want)
	return got
}

type rig struct {
	plat    platform.Platform
	cameras *fakeCameras
	sensors *fakeSensors
	power   *fakePower
	surface *recorder
}

func newRig() *rig {
	r := &rig{
		cameras: &fakeCameras{sizes: []model.Size{{Width: 640, Height: 480}, {Width: 2592, Height: 1944}}},
		sensors: newFakeSensors(model.SensorAmbientTemperature, model.SensorLight),
		power:   &fakePower{available: true},
		surface: &recorder{},
	}
	r.plat = platform.Platform{
		Device:  fakeDevice{brand: "acme"},
		Display: fakeDisplay{m: model.DisplayMetrics{WidthPixels: 480, HeightPixels: 640, XDPI: 160, YDPI: 160, Density: 1.5}},
		Camera:  r.cameras,
		Sensors: r.sensors,
		Power:   r.power,
		CPU:     fakeCPU{},
	}
	return r
}
