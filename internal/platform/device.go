package platform

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Dicklesworthstone/hwinfo/internal/sampler"
)

// HostDevice resolves the brand from Android properties, DMI, or the OS.
type HostDevice struct {
	SysRoot  string // usually "/sys"
	getprop  func(ctx context.Context, key string) (string, error)
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
}

func NewHostDevice(sysRoot string) *HostDevice {
	return &HostDevice{
		SysRoot: sysRoot,
		getprop: func(ctx context.Context, key string) (string, error) {
			return runCmd(ctx, 400*time.Millisecond, "getprop", key)
		},
		hostInfo: host.InfoWithContext,
	}
}

func (d *HostDevice) Brand(ctx context.Context) (string, error) {
	if out, err := d.getprop(ctx, "ro.product.brand"); err == nil {
		if brand := strings.TrimSpace(out); brand != "" {
			return brand, nil
		}
	}
	for _, attr := range []string{"sys_vendor", "board_vendor"} {
		v, err := sampler.ReadString(filepath.Join(d.SysRoot, "class", "dmi", "id", attr))
		if err == nil && v != "" && !isPlaceholderVendor(v) {
			return v, nil
		}
	}
	info, err := d.hostInfo(ctx)
	if err != nil {
		return "", err
	}
	if info.Platform != "" {
		return info.Platform, nil
	}
	return info.OS, nil
}

// Firmware often ships these instead of a real vendor.
func isPlaceholderVendor(v string) bool {
	switch strings.ToLower(v) {
	case "to be filled by o.e.m.", "default string", "system manufacturer", "oem":
		return true
	}
	return false
}

func runCmd(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}
