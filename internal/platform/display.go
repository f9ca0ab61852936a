package platform

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
	"github.com/Dicklesworthstone/hwinfo/internal/sampler"
)

const (
	baselineDPI = 160
	mmPerInch   = 25.4
)

// HostDisplay reads the first connected DRM connector. A non-zero Override
// is returned as-is.
type HostDisplay struct {
	SysRoot  string
	Override model.DisplayMetrics
}

func (d *HostDisplay) Metrics(ctx context.Context) (model.DisplayMetrics, error) {
	if d.Override.WidthPixels > 0 && d.Override.HeightPixels > 0 {
		m := d.Override
		if m.Density <= 0 {
			m.Density = densityFromDPI(m.XDPI, m.YDPI)
		}
		return m, nil
	}

	connectors, _ := filepath.Glob(filepath.Join(d.SysRoot, "class", "drm", "card*-*"))
	sort.Strings(connectors)
	for _, dir := range connectors {
		if err := ctx.Err(); err != nil {
			return model.DisplayMetrics{}, err
		}
		status, err := sampler.ReadString(filepath.Join(dir, "status"))
		if err != nil || status != "connected" {
			continue
		}
		m, err := connectorMetrics(dir)
		if err != nil {
			continue
		}
		return m, nil
	}
	return model.DisplayMetrics{}, fmt.Errorf("display: %w", ErrUnavailable)
}

func connectorMetrics(dir string) (model.DisplayMetrics, error) {
	modes, err := sampler.ReadString(filepath.Join(dir, "modes"))
	if err != nil || modes == "" {
		return model.DisplayMetrics{}, fmt.Errorf("no modes in %s", dir)
	}
	w, h, err := parseMode(strings.SplitN(modes, "\n", 2)[0])
	if err != nil {
		return model.DisplayMetrics{}, err
	}

	m := model.DisplayMetrics{WidthPixels: w, HeightPixels: h}
	edid, err := os.ReadFile(filepath.Join(dir, "edid"))
	if err == nil {
		if wmm, hmm, ok := edidSizeMM(edid); ok {
			m.XDPI = float64(w) / (wmm / mmPerInch)
			m.YDPI = float64(h) / (hmm / mmPerInch)
		}
	}
	m.Density = densityFromDPI(m.XDPI, m.YDPI)
	return m, nil
}

// parseMode parses "1920x1080" with an optional trailing "i".
func parseMode(s string) (int, int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "i")
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("bad mode %q", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("bad mode %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("bad mode %q: %w", s, err)
	}
	return w, h, nil
}

// edidSizeMM returns the physical image size. The first detailed timing
// descriptor carries millimetres; the basic block only centimetres.
func edidSizeMM(edid []byte) (w, h float64, ok bool) {
	if len(edid) < 128 || edid[0] != 0x00 || edid[1] != 0xff {
		return 0, 0, false
	}
	// Pixel clock of zero marks a display descriptor, not a timing.
	if edid[54] != 0 || edid[55] != 0 {
		wmm := int(edid[66]) | int(edid[68]>>4)<<8
		hmm := int(edid[67]) | int(edid[68]&0x0f)<<8
		if wmm > 0 && hmm > 0 {
			return float64(wmm), float64(hmm), true
		}
	}
	if edid[21] > 0 && edid[22] > 0 {
		return float64(edid[21]) * 10, float64(edid[22]) * 10, true
	}
	return 0, 0, false
}

func densityFromDPI(xdpi, ydpi float64) float64 {
	if xdpi <= 0 || ydpi <= 0 {
		return 1
	}
	return math.Round((xdpi+ydpi)/2) / baselineDPI
}
