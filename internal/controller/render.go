package controller

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/hwinfo/internal/info"
	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

const (
	inchesSuffix  = " inches"
	celsiusSuffix = " °C"
	percentSuffix = " %"
	luxSuffix     = " lx"
	densityUnit   = "dpi"

	// Concurrent platform queries within one pass.
	passQueries = 4
)

// passInput is the copy of loop state a formatting pass works from.
type passInput struct {
	readings   model.Readings
	metrics    model.DisplayMetrics
	metricsErr error
}

// build runs one formatting pass. Platform services are only queried for
// fields in the configured list; any failure renders as NotAvailable.
func (c *Controller) build(ctx context.Context, in passInput) model.Summary {
	values := make([]model.FieldValue, len(c.fields))
	var g errgroup.Group
	g.SetLimit(passQueries)
	for i, f := range c.fields {
		i, f := i, f
		g.Go(func() error {
			values[i] = model.FieldValue{Field: f, Value: c.value(ctx, f, in)}
			return nil
		})
	}
	_ = g.Wait()
	return model.Summary{Timestamp: c.now(), Values: values}
}

func (c *Controller) value(ctx context.Context, f model.Field, in passInput) string {
	switch f {
	case model.FieldBrand:
		if c.plat.Device == nil {
			return model.NotAvailable
		}
		brand, err := c.plat.Device.Brand(ctx)
		if err != nil || brand == "" {
			c.log.Debug().Err(err).Msg("brand unavailable")
			return model.NotAvailable
		}
		return brand

	case model.FieldCPUFamily:
		if c.plat.CPU == nil {
			return model.NotAvailable
		}
		return c.plat.CPU.Family(ctx)

	case model.FieldCPUCount:
		if c.plat.CPU == nil {
			return model.NotAvailable
		}
		n, err := c.plat.CPU.Count(ctx)
		if err != nil || n <= 0 {
			c.log.Debug().Err(err).Msg("cpu count unavailable")
			return model.NotAvailable
		}
		return c.agg.Integer(n)

	case model.FieldCPUFeatures:
		if c.plat.CPU == nil {
			return model.NotAvailable
		}
		features, err := c.plat.CPU.Features(ctx)
		if err != nil {
			c.log.Debug().Err(err).Msg("cpu features unavailable")
			return model.NotAvailable
		}
		if features == "" {
			return "none"
		}
		return features

	case model.FieldScreenSize:
		if in.metricsErr != nil {
			return model.NotAvailable
		}
		s, err := c.agg.ScreenDiagonalInches(in.metrics)
		if err != nil {
			return model.NotAvailable
		}
		return s + inchesSuffix

	case model.FieldScreenResolution:
		if in.metricsErr != nil {
			return model.NotAvailable
		}
		return info.ScreenResolution(in.metrics.WidthPixels, in.metrics.HeightPixels)

	case model.FieldScreenDensity:
		if in.metricsErr != nil || in.metrics.Density <= 0 {
			return model.NotAvailable
		}
		return info.ScreenDensityLabel(in.metrics.Density, densityUnit)

	case model.FieldCameraPixels:
		if c.plat.Camera == nil {
			return model.NotAvailable
		}
		px, err := info.MaxCameraResolution(ctx, c.plat.Camera)
		if err != nil {
			c.log.Warn().Err(err).Msg("camera query failed")
			return model.NotAvailable
		}
		return c.agg.ScaledUnitString(px, info.PixelUnits)

	case model.FieldBatteryTemperature:
		return in.readings.BatteryTemp.Format(celsiusSuffix)
	case model.FieldAmbientTemperature:
		return in.readings.AmbientTemp.Format(celsiusSuffix)
	case model.FieldHumidity:
		return in.readings.Humidity.Format(percentSuffix)
	case model.FieldLight:
		return in.readings.Light.Format(luxSuffix)
	}
	return model.NotAvailable
}
