package platform

import (
	"context"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	xcpu "golang.org/x/sys/cpu"
)

// cpuFeatureNames is the reported feature vocabulary, in output order.
var cpuFeatureNames = []string{
	"armv7",
	"vfpv3",
	"neon",
	"ldrex_strex",
	"vfpv2",
	"vfp_d32",
	"vfp_fp16",
	"vfp_fma",
	"neon_fma",
	"idiv_arm",
	"idiv_thumb2",
	"iwmmxt",
	"ssse3",
	"popcnt",
	"movbe",
}

// Kernel /proc/cpuinfo spellings mapped onto cpuFeatureNames.
var cpuFlagAliases = map[string][]string{
	"vfp":    {"vfpv2"},
	"vfpd32": {"vfp_d32"},
	"half":   {"vfp_fp16"},
	"vfpv4":  {"vfp_fma", "neon_fma"},
	"idiva":  {"idiv_arm"},
	"idivt":  {"idiv_thumb2"},
	"asimd":  {"neon"},
	"v7":     {"armv7"},
}

// HostCPU answers CPU queries through gopsutil, falling back to
// golang.org/x/sys/cpu when /proc/cpuinfo carries no flags.
type HostCPU struct {
	arch   string
	counts func(ctx context.Context, logical bool) (int, error)
	info   func(ctx context.Context) ([]cpu.InfoStat, error)
}

func NewHostCPU() *HostCPU {
	return &HostCPU{
		arch:   runtime.GOARCH,
		counts: cpu.CountsWithContext,
		info:   cpu.InfoWithContext,
	}
}

func (c *HostCPU) Family(context.Context) string { return cpuFamily(c.arch) }

func (c *HostCPU) Count(ctx context.Context) (int, error) {
	return c.counts(ctx, true)
}

func (c *HostCPU) Features(ctx context.Context) (string, error) {
	stats, err := c.info(ctx)
	var flags []string
	if err == nil && len(stats) > 0 {
		flags = stats[0].Flags
	}
	if len(flags) == 0 {
		flags = detectedFlags()
	}
	return filterFeatures(flags), nil
}

func cpuFamily(arch string) string {
	switch arch {
	case "arm":
		return "ARM"
	case "arm64":
		return "ARM64"
	case "386":
		return "X86"
	case "amd64":
		return "X86_64"
	case "mips", "mipsle", "mips64", "mips64le":
		return "MIPS"
	}
	return "Unknown"
}

// filterFeatures keeps only known features and joins them in list order.
func filterFeatures(flags []string) string {
	have := make(map[string]bool, len(flags))
	for _, f := range flags {
		f = strings.ToLower(strings.TrimSpace(f))
		have[f] = true
		for _, alias := range cpuFlagAliases[f] {
			have[alias] = true
		}
	}
	out := make([]string, 0, len(cpuFeatureNames))
	for _, name := range cpuFeatureNames {
		if have[name] {
			out = append(out, name)
		}
	}
	return strings.Join(out, " ")
}

func detectedFlags() []string {
	var flags []string
	add := func(ok bool, name string) {
		if ok {
			flags = append(flags, name)
		}
	}
	add(xcpu.X86.HasSSSE3, "ssse3")
	add(xcpu.X86.HasPOPCNT, "popcnt")
	add(xcpu.ARM.HasVFP, "vfp")
	add(xcpu.ARM.HasVFPv3, "vfpv3")
	add(xcpu.ARM.HasNEON, "neon")
	add(xcpu.ARM.HasVFPD32, "vfpd32")
	add(xcpu.ARM.HasHALF, "half")
	add(xcpu.ARM.HasVFPv4, "vfpv4")
	add(xcpu.ARM.HasIDIVA, "idiva")
	add(xcpu.ARM.HasIDIVT, "idivt")
	add(xcpu.ARM.HasIWMMXT, "iwmmxt")
	add(xcpu.ARM64.HasASIMD, "asimd")
	return flags
}
