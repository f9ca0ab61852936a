// Package info turns raw hardware measurements into display strings.
package info

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
	"github.com/Dicklesworthstone/hwinfo/internal/platform"
)

var (
	// ErrInvalidDPI is returned for displays reporting a non-positive DPI.
	ErrInvalidDPI = errors.New("display reports no physical dpi")
	// ErrNoPictureSizes is returned when the camera lists no still sizes.
	ErrNoPictureSizes = errors.New("camera reports no picture sizes")
)

// Density buckets, in dots per inch.
const (
	DensityMedium  = 160
	DensityTV      = 213
	DensityHigh    = 240
	DensityXHigh   = 320
	DensityXXHigh  = 480
	DensityDefault = DensityMedium
)

var densityLabels = map[int]string{
	DensityMedium: "mdpi",
	DensityTV:     "tvdpi",
	DensityHigh:   "hdpi",
	DensityXHigh:  "xhdpi",
	DensityXXHigh: "xxhdpi",
}

const (
	oneK = 1024
	oneM = oneK * oneK
	oneG = oneK * oneM
)

// Units names a count at scale 1, 1024, 1024² and 1024³.
type Units [4]string

var (
	PixelUnits = Units{"pixels", "KP", "MP", "GP"}
	ByteUnits  = Units{"bytes", "KB", "MB", "GB"}
)

// Aggregator formats numbers for one locale.
type Aggregator struct {
	p *message.Printer
}

// New returns an Aggregator printing numbers for tag.
func New(tag language.Tag) *Aggregator {
	return &Aggregator{p: message.NewPrinter(tag)}
}

var english = New(language.English)

// DiagonalInches is the physical screen diagonal.
func DiagonalInches(m model.DisplayMetrics) (float64, error) {
	if m.XDPI <= 0 || m.YDPI <= 0 {
		return 0, ErrInvalidDPI
	}
	w := float64(m.WidthPixels) / m.XDPI
	h := float64(m.HeightPixels) / m.YDPI
	return math.Sqrt(w*w + h*h), nil
}

// ScreenDiagonalInches formats the diagonal with at most one decimal.
func (a *Aggregator) ScreenDiagonalInches(m model.DisplayMetrics) (string, error) {
	d, err := DiagonalInches(m)
	if err != nil {
		return "", err
	}
	return a.p.Sprint(number.Decimal(d, number.MaxFractionDigits(1))), nil
}

// ScreenResolution renders height first, as the original screens did.
func ScreenResolution(width, height int) string {
	return strconv.Itoa(height) + " * " + strconv.Itoa(width)
}

// ScreenDensityLabel maps a logical density scale onto its bucket name,
// e.g. "hdpi (240 dpi)". Unknown densities render as "(300 dpi)".
func ScreenDensityLabel(scale float64, unitSuffix string) string {
	dpi := int(math.Round(scale * DensityDefault))
	value := "(" + strconv.Itoa(dpi) + " " + unitSuffix + ")"
	if label, ok := densityLabels[dpi]; ok {
		return label + " " + value
	}
	return value
}

// ScaledUnitString divides count by the largest power of 1024 that leaves
// a nonzero whole quotient and prints it with one decimal.
func (a *Aggregator) ScaledUnitString(count int64, units Units) string {
	var (
		q    float64
		unit string
	)
	switch {
	case count/oneG > 0:
		q, unit = float64(count)/oneG, units[3]
	case count/oneM > 0:
		q, unit = float64(count)/oneM, units[2]
	case count/oneK > 0:
		q, unit = float64(count)/oneK, units[1]
	default:
		q, unit = float64(count), units[0]
	}
	return a.p.Sprint(number.Decimal(q, number.MinFractionDigits(1), number.MaxFractionDigits(1))) + " " + unit
}

// Integer formats n with locale grouping.
func (a *Aggregator) Integer(n int) string {
	return a.p.Sprint(number.Decimal(n))
}

// ScreenDiagonalInches formats with English conventions.
func ScreenDiagonalInches(m model.DisplayMetrics) (string, error) {
	return english.ScreenDiagonalInches(m)
}

// ScaledUnitString formats with English conventions.
func ScaledUnitString(count int64, units Units) string {
	return english.ScaledUnitString(count, units)
}

// MaxCameraResolution returns the largest supported still size in pixels.
// The camera is always stopped and released before returning.
func MaxCameraResolution(ctx context.Context, cams platform.CameraService) (best int64, err error) {
	cam, err := cams.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		stopErr := cam.StopPreview()
		relErr := cam.Release()
		if err == nil {
			err = errors.Join(stopErr, relErr)
		}
	}()

	sizes, err := cam.SupportedPictureSizes()
	if err != nil {
		return 0, fmt.Errorf("query picture sizes: %w", err)
	}
	if len(sizes) == 0 {
		return 0, ErrNoPictureSizes
	}
	for _, s := range sizes {
		if p := s.Pixels(); p > best {
			best = p
		}
	}
	return best, nil
}
