package platform

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Dicklesworthstone/hwinfo/internal/sampler"
)

// HostPower polls the battery temperature from power_supply sysfs, which
// reports tenths of a degree like an Android battery broadcast.
type HostPower struct {
	SysRoot  string
	Interval time.Duration
	temps    func(ctx context.Context) ([]host.TemperatureStat, error)
}

func NewHostPower(sysRoot string, interval time.Duration) *HostPower {
	return &HostPower{
		SysRoot:  sysRoot,
		Interval: interval,
		temps:    host.SensorsTemperaturesWithContext,
	}
}

func (p *HostPower) Available() bool {
	_, err := p.temperatureTenths(context.Background())
	return err == nil
}

func (p *HostPower) Subscribe(ctx context.Context, fn func(BatteryEvent)) (Subscription, error) {
	smp := sampler.New(p.Interval, p.temperatureTenths)
	return forward(ctx, smp.Stream, func(tenths int) {
		fn(BatteryEvent{TemperatureTenths: tenths})
	}), nil
}

func (p *HostPower) temperatureTenths(ctx context.Context) (int, error) {
	supplies, _ := filepath.Glob(filepath.Join(p.SysRoot, "class", "power_supply", "*"))
	sort.Strings(supplies)
	for _, dir := range supplies {
		kind, err := sampler.ReadString(filepath.Join(dir, "type"))
		if err != nil || kind != "Battery" {
			continue
		}
		v, err := sampler.ReadFloat(filepath.Join(dir, "temp"))
		if err != nil {
			continue
		}
		return int(v), nil
	}

	if p.temps != nil {
		stats, _ := p.temps(ctx)
		for _, t := range stats {
			if strings.HasPrefix(strings.ToLower(t.SensorKey), "bat") {
				return int(math.Round(t.Temperature * 10)), nil
			}
		}
	}
	return 0, fmt.Errorf("battery temperature: %w", ErrUnavailable)
}
