package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
	"github.com/Dicklesworthstone/hwinfo/internal/sampler"
)

// iioChannel is one IIO attribute family and the factor converting its
// processed value to the unit hwinfo reports.
type iioChannel struct {
	prefix string
	factor float64
}

// Per the IIO sysfs ABI: temperature in milli °C, relative humidity in
// milli percent, illuminance in lux.
var iioChannels = map[model.SensorKind][]iioChannel{
	model.SensorAmbientTemperature: {{"in_temp_ambient", 0.001}, {"in_temp", 0.001}},
	model.SensorRelativeHumidity:   {{"in_humidityrelative", 0.001}},
	model.SensorLight:              {{"in_illuminance", 1}, {"in_illuminance0", 1}},
}

// HostSensors polls IIO devices, with a gopsutil fallback for ambient
// temperature.
type HostSensors struct {
	SysRoot  string
	Interval time.Duration
	temps    func(ctx context.Context) ([]host.TemperatureStat, error)
}

func NewHostSensors(sysRoot string, interval time.Duration) *HostSensors {
	return &HostSensors{
		SysRoot:  sysRoot,
		Interval: interval,
		temps:    host.SensorsTemperaturesWithContext,
	}
}

func (s *HostSensors) Available(kind model.SensorKind) bool {
	_, err := s.read(context.Background(), kind)
	return err == nil
}

func (s *HostSensors) Subscribe(ctx context.Context, kind model.SensorKind, fn func(SensorEvent)) (Subscription, error) {
	if _, ok := iioChannels[kind]; !ok {
		return nil, fmt.Errorf("sensor %s: %w", kind, ErrUnavailable)
	}
	smp := sampler.New(s.Interval, func(ctx context.Context) (float64, error) {
		return s.read(ctx, kind)
	})
	return forward(ctx, smp.Stream, func(v float64) {
		fn(SensorEvent{Kind: kind, Value: v})
	}), nil
}

func (s *HostSensors) read(ctx context.Context, kind model.SensorKind) (float64, error) {
	devices, _ := filepath.Glob(filepath.Join(s.SysRoot, "bus", "iio", "devices", "iio:device*"))
	sort.Strings(devices)
	for _, ch := range iioChannels[kind] {
		for _, dev := range devices {
			if v, err := readIIO(dev, ch.prefix); err == nil {
				return v * ch.factor, nil
			}
		}
	}
	if kind == model.SensorAmbientTemperature && s.temps != nil {
		stats, _ := s.temps(ctx)
		for _, t := range stats {
			if strings.Contains(strings.ToLower(t.SensorKey), "ambient") {
				return t.Temperature, nil
			}
		}
	}
	return 0, fmt.Errorf("sensor %s: %w", kind, ErrUnavailable)
}

// readIIO returns <prefix>_input, or (<prefix>_raw + offset) * scale.
func readIIO(dev, prefix string) (float64, error) {
	if v, err := sampler.ReadFloat(filepath.Join(dev, prefix+"_input")); err == nil {
		return v, nil
	}
	raw, err := sampler.ReadFloat(filepath.Join(dev, prefix+"_raw"))
	if err != nil {
		return 0, err
	}
	offset, err := sampler.ReadFloat(filepath.Join(dev, prefix+"_offset"))
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	scale, err := sampler.ReadFloat(filepath.Join(dev, prefix+"_scale"))
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, err
		}
		scale = 1
	}
	return (raw + offset) * scale, nil
}
