package platform

import (
	"time"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

// HostOptions selects which host services are backed by real hardware.
type HostOptions struct {
	SysRoot         string
	Interval        time.Duration
	CameraDevice    string
	EnableCamera    bool
	EnableSensors   bool
	EnableBattery   bool
	DisplayOverride model.DisplayMetrics
}

// Host wires the host implementations. Disabled services report
// ErrUnavailable.
func Host(opts HostOptions) Platform {
	if opts.SysRoot == "" {
		opts.SysRoot = "/sys"
	}
	p := Platform{
		Device:  NewHostDevice(opts.SysRoot),
		Display: &HostDisplay{SysRoot: opts.SysRoot, Override: opts.DisplayOverride},
		Camera:  &HostCamera{},
		Sensors: NoSensors{},
		Power:   NoPower{},
		CPU:     NewHostCPU(),
	}
	if opts.EnableCamera {
		p.Camera = &HostCamera{Device: opts.CameraDevice}
	}
	if opts.EnableSensors {
		p.Sensors = NewHostSensors(opts.SysRoot, opts.Interval)
	}
	if opts.EnableBattery {
		p.Power = NewHostPower(opts.SysRoot, opts.Interval)
	}
	return p
}
