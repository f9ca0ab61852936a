package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Dicklesworthstone/hwinfo/internal/info"
	"github.com/Dicklesworthstone/hwinfo/internal/model"
	"github.com/Dicklesworthstone/hwinfo/internal/platform"
)

func TestActivatePublishesInitialSummary(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()

	s := r.surface.waitFor(t, model.FieldBrand, "acme")
	assert.Equal(t, Active, c.State())

	want := []model.FieldValue{
		{Field: model.FieldBrand, Value: "acme"},
		{Field: model.FieldCPUFamily, Value: "ARM"},
		{Field: model.FieldCPUCount, Value: "8"},
		{Field: model.FieldScreenSize, Value: "5 inches"},
		{Field: model.FieldScreenResolution, Value: "640 * 480"},
		{Field: model.FieldScreenDensity, Value: "hdpi (240 dpi)"},
		{Field: model.FieldCameraPixels, Value: "4.8 MP"},
		{Field: model.FieldBatteryTemperature, Value: model.Pending},
		{Field: model.FieldAmbientTemperature, Value: model.Pending},
		{Field: model.FieldHumidity, Value: model.NotAvailable},
		{Field: model.FieldLight, Value: model.Pending},
		{Field: model.FieldCPUFeatures, Value: "neon vfpv3"},
	}
	assert.Equal(t, want, s.Values)
	assert.Contains(t, s.Text(), "Screen resolution: 640 * 480\n")
}

func TestActivateTwice(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()

	assert.ErrorIs(t, c.Activate(context.Background()), ErrAlreadyActive)
}

func TestEventsUpdateOneFieldEach(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()
	r.surface.waitFor(t, model.FieldBrand, "acme")

	r.power.emit(312)
	s := r.surface.waitFor(t, model.FieldBatteryTemperature, "31 °C")
	v, _ := s.Lookup(model.FieldAmbientTemperature)
	assert.Equal(t, model.Pending, v)

	r.sensors.emit(model.SensorAmbientTemperature, 21.7)
	r.surface.waitFor(t, model.FieldAmbientTemperature, "21 °C")

	r.sensors.emit(model.SensorLight, 350)
	s = r.surface.waitFor(t, model.FieldLight, "350 lx")
	v, _ = s.Lookup(model.FieldBatteryTemperature)
	assert.Equal(t, "31 °C", v)
}

func TestAbsentSensorNeverRendersNumber(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()

	// Stray samples for a sensor that was missing at subscription time.
	c.OnSensor(platform.SensorEvent{Kind: model.SensorRelativeHumidity, Value: 55})
	r.power.emit(250)
	r.sensors.emit(model.SensorLight, 10)
	c.OnSensor(platform.SensorEvent{Kind: model.SensorRelativeHumidity, Value: 60})
	r.power.emit(260)
	r.surface.waitFor(t, model.FieldBatteryTemperature, "26 °C")

	history := r.surface.all()
	require.NotEmpty(t, history)
	for _, s := range history {
		v, ok := s.Lookup(model.FieldHumidity)
		require.True(t, ok)
		assert.Equal(t, model.NotAvailable, v)
	}
}

func TestUnknownSensorKindIsIgnored(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	r.surface.waitFor(t, model.FieldBrand, "acme")

	c.OnSensor(platform.SensorEvent{Kind: model.SensorKind(99), Value: 1})
	r.power.emit(300)
	r.surface.waitFor(t, model.FieldBatteryTemperature, "30 °C")
	c.Deactivate()

	// One pass for activation, one for the battery event.
	assert.Equal(t, int32(2), r.cameras.opens.Load())
	assert.Len(t, r.surface.all(), 2)
}

func TestDeactivateReleasesSubscriptions(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	r.surface.waitFor(t, model.FieldBrand, "acme")
	assert.Equal(t, 2, r.sensors.active())
	assert.True(t, r.power.subscribed())

	c.Deactivate()
	assert.Equal(t, Inactive, c.State())
	assert.Equal(t, 0, r.sensors.active())
	assert.False(t, r.power.subscribed())
	assert.Equal(t, r.cameras.opens.Load(), r.cameras.releases.Load())

	published := len(r.surface.all())
	c.OnBattery(platform.BatteryEvent{TemperatureTenths: 400})
	c.OnSensor(platform.SensorEvent{Kind: model.SensorLight, Value: 5})
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, r.surface.all(), published)

	c.Deactivate()
}

func TestReactivateKeepsReadings(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	r.power.emit(355)
	r.surface.waitFor(t, model.FieldBatteryTemperature, "35 °C")
	c.Deactivate()

	r.sensors.mu.Lock()
	r.sensors.available[model.SensorRelativeHumidity] = true
	r.sensors.mu.Unlock()

	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()
	s := r.surface.waitFor(t, model.FieldHumidity, model.Pending)
	v, _ := s.Lookup(model.FieldBatteryTemperature)
	assert.Equal(t, "35 °C", v)
	assert.Equal(t, 3, r.sensors.active())
}

func TestRapidBatteryEventsRunIndependentPasses(t *testing.T) {
	r := newRig()
	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	r.surface.waitFor(t, model.FieldBrand, "acme")

	r.power.emit(300)
	r.power.emit(310)

	require.Eventually(t, func() bool { return len(r.surface.all()) == 3 }, 2*time.Second, time.Millisecond)
	c.Deactivate()

	assert.Equal(t, int32(3), r.cameras.opens.Load())
	assert.Equal(t, int32(3), r.cameras.releases.Load())

	// Whatever arrived last is what stays on screen.
	history := r.surface.all()
	last, _ := r.surface.last()
	assert.Equal(t, history[len(history)-1], last)
	seen := map[string]bool{}
	for _, s := range history {
		v, _ := s.Lookup(model.FieldBatteryTemperature)
		seen[v] = true
	}
	assert.True(t, seen["31 °C"])
}

func TestDedupCoalescesTriggers(t *testing.T) {
	r := newRig()
	r.cameras.gate = make(chan struct{})
	c := New(r.plat, r.surface, Options{Dedup: true})
	require.NoError(t, c.Activate(context.Background()))

	r.power.emit(300)
	r.power.emit(310)
	r.power.emit(320)
	close(r.cameras.gate)

	r.surface.waitFor(t, model.FieldBatteryTemperature, "32 °C")
	c.Deactivate()

	assert.Equal(t, int32(2), r.cameras.opens.Load())
	assert.Len(t, r.surface.all(), 2)
}

func TestFailuresRenderPlaceholders(t *testing.T) {
	r := newRig()
	r.plat.Display = fakeDisplay{err: platform.ErrUnavailable}
	r.plat.Device = fakeDevice{err: errors.New("no vendor")}
	r.plat.Camera = &fakeCameras{openErr: platform.ErrCameraBusy}
	r.power.available = false

	c := New(r.plat, r.surface, Options{})
	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()

	s := r.surface.waitFor(t, model.FieldCPUFamily, "ARM")
	for _, f := range []model.Field{
		model.FieldBrand,
		model.FieldScreenSize,
		model.FieldScreenResolution,
		model.FieldScreenDensity,
		model.FieldCameraPixels,
		model.FieldBatteryTemperature,
	} {
		v, ok := s.Lookup(f)
		require.True(t, ok)
		assert.Equal(t, model.NotAvailable, v, f.Name())
	}
	assert.False(t, r.power.subscribed())
}

func TestZeroDPIRendersPlaceholder(t *testing.T) {
	r := newRig()
	r.plat.Display = fakeDisplay{m: model.DisplayMetrics{WidthPixels: 480, HeightPixels: 800}}
	c := New(r.plat, r.surface, Options{Fields: []model.Field{model.FieldScreenResolution, model.FieldScreenSize}})
	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()

	s := r.surface.waitFor(t, model.FieldScreenResolution, "800 * 480")
	v, _ := s.Lookup(model.FieldScreenSize)
	assert.Equal(t, model.NotAvailable, v)
}

func TestFieldListLimitsQueries(t *testing.T) {
	r := newRig()
	fields, err := model.ParseFields("screen_resolution,brand,battery_temperature")
	require.NoError(t, err)
	c := New(r.plat, r.surface, Options{Fields: fields, Aggregator: info.New(language.German)})
	require.NoError(t, c.Activate(context.Background()))
	s := r.surface.waitFor(t, model.FieldBrand, "acme")
	c.Deactivate()

	assert.Equal(t, []model.Field{model.FieldBrand, model.FieldScreenResolution, model.FieldBatteryTemperature}, c.Fields())
	assert.Len(t, s.Values, 3)
	assert.Equal(t, int32(0), r.cameras.opens.Load())
}

func TestSummaryTimestampUsesClock(t *testing.T) {
	r := newRig()
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	c := New(r.plat, r.surface, Options{Now: func() time.Time { return at }})
	require.NoError(t, c.Activate(context.Background()))
	defer c.Deactivate()

	s := r.surface.waitFor(t, model.FieldBrand, "acme")
	assert.Equal(t, at, s.Timestamp)
}
