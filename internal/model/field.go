package model

import (
	"fmt"
	"sort"
	"strings"
)

// Field identifies one line of the hardware summary.
type Field int

// Fields are declared in display order.
const (
	FieldBrand Field = iota
	FieldCPUFamily
	FieldCPUCount
	FieldScreenSize
	FieldScreenResolution
	FieldScreenDensity
	FieldCameraPixels
	FieldBatteryTemperature
	FieldAmbientTemperature
	FieldHumidity
	FieldLight
	FieldCPUFeatures
	numFields
)

var fieldMeta = [numFields]struct{ name, label string }{
	FieldBrand:              {"brand", "Brand"},
	FieldCPUFamily:          {"cpu_family", "CPU family"},
	FieldCPUCount:           {"cpu_count", "CPU count"},
	FieldScreenSize:         {"screen_size", "Screen size"},
	FieldScreenResolution:   {"screen_resolution", "Screen resolution"},
	FieldScreenDensity:      {"screen_density", "Screen density"},
	FieldCameraPixels:       {"camera_pixels", "Camera pixels"},
	FieldBatteryTemperature: {"battery_temperature", "Battery temperature"},
	FieldAmbientTemperature: {"ambient_temperature", "Ambient temperature"},
	FieldHumidity:           {"humidity", "Humidity"},
	FieldLight:              {"light", "Light"},
	FieldCPUFeatures:        {"cpu_features", "CPU features"},
}

// Name is the stable identifier used in flags and JSON.
func (f Field) Name() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldMeta[f].name
}

// Label is the human-readable line prefix.
func (f Field) Label() string {
	if f < 0 || f >= numFields {
		return f.Name()
	}
	return fieldMeta[f].label
}

func (f Field) String() string { return f.Name() }

// Presets name the field sets of the three released layouts.
var Presets = map[string][]Field{
	"basic": {
		FieldBrand, FieldScreenSize, FieldScreenResolution, FieldCameraPixels,
	},
	"sensors": {
		FieldBrand, FieldScreenSize, FieldScreenResolution, FieldScreenDensity,
		FieldCameraPixels, FieldBatteryTemperature, FieldAmbientTemperature,
		FieldHumidity, FieldLight,
	},
	"full": AllFields(),
}

// AllFields returns every field in display order.
func AllFields() []Field {
	out := make([]Field, 0, numFields)
	for f := Field(0); f < numFields; f++ {
		out = append(out, f)
	}
	return out
}

// ParseFields accepts a preset name or a comma-separated list of field
// names. The result is deduplicated and in display order.
func ParseFields(list string) ([]Field, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return AllFields(), nil
	}
	if preset, ok := Presets[strings.ToLower(list)]; ok {
		return Normalize(preset), nil
	}

	byName := make(map[string]Field, numFields)
	for f := Field(0); f < numFields; f++ {
		byName[f.Name()] = f
	}

	var out []Field
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty field list %q", list)
	}
	return Normalize(out), nil
}

// Normalize sorts fields into display order and drops duplicates.
func Normalize(fields []Field) []Field {
	out := append([]Field(nil), fields...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, f := range out {
		if i > 0 && f == out[n-1] {
			continue
		}
		out[n] = f
		n++
	}
	return out[:n]
}

// Has reports whether fields contains f.
func Has(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
