package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is rendered for any value whose source is missing or failed.
const NotAvailable = "not available"

// Pending is rendered for an available sensor that has not reported yet.
const Pending = "--"

// DisplayMetrics is the display snapshot captured once per activation.
type DisplayMetrics struct {
	WidthPixels  int
	HeightPixels int
	XDPI         float64 // physical pixels per inch, horizontal
	YDPI         float64 // physical pixels per inch, vertical
	Density      float64 // logical density scale, 1.0 == 160 dpi
}

// Size is one supported still-capture size.
type Size struct {
	Width  int
	Height int
}

// Pixels returns Width*Height without overflowing int32 platforms.
func (s Size) Pixels() int64 { return int64(s.Width) * int64(s.Height) }

// SensorKind tags environmental sensor readings.
type SensorKind int

const (
	SensorAmbientTemperature SensorKind = iota + 1
	SensorRelativeHumidity
	SensorLight
)

// EnvironmentalSensors lists the kinds the controller subscribes to.
var EnvironmentalSensors = []SensorKind{
	SensorAmbientTemperature,
	SensorRelativeHumidity,
	SensorLight,
}

func (k SensorKind) String() string {
	switch k {
	case SensorAmbientTemperature:
		return "ambient_temperature"
	case SensorRelativeHumidity:
		return "humidity"
	case SensorLight:
		return "light"
	}
	return "unknown"
}

type readingState uint8

const (
	statePending readingState = iota
	stateAbsent
	stateSet
)

// Reading is one optional, event-backed value. The zero Reading is pending.
type Reading struct {
	state readingState
	value int
}

// Absent marks a reading whose backing source is missing.
func Absent() Reading { return Reading{state: stateAbsent} }

// Value returns a reading holding v.
func Value(v int) Reading { return Reading{state: stateSet, value: v} }

func (r Reading) IsAbsent() bool { return r.state == stateAbsent }

// Get returns the value and whether one has been set.
func (r Reading) Get() (int, bool) { return r.value, r.state == stateSet }

// Format renders the value followed by unit, or a placeholder.
func (r Reading) Format(unit string) string {
	switch r.state {
	case stateAbsent:
		return NotAvailable
	case stateSet:
		return strconv.Itoa(r.value) + unit
	}
	return Pending
}

// Readings is the mutable part of the hardware snapshot, fed by events.
type Readings struct {
	BatteryTemp Reading // whole degrees Celsius
	AmbientTemp Reading // whole degrees Celsius
	Humidity    Reading // percent relative humidity
	Light       Reading // lux
}

// Sensor returns a pointer to the field backing kind, or nil.
func (r *Readings) Sensor(kind SensorKind) *Reading {
	switch kind {
	case SensorAmbientTemperature:
		return &r.AmbientTemp
	case SensorRelativeHumidity:
		return &r.Humidity
	case SensorLight:
		return &r.Light
	}
	return nil
}

// FieldValue is one rendered line of a Summary.
type FieldValue struct {
	Field Field
	Value string
}

// Summary is the formatted hardware snapshot published to the screen.
type Summary struct {
	Timestamp time.Time
	Values    []FieldValue
}

// Lookup returns the rendered value for f.
func (s Summary) Lookup(f Field) (string, bool) {
	for _, v := range s.Values {
		if v.Field == f {
			return v.Value, true
		}
	}
	return "", false
}

// Text renders the summary as "Label: value" lines in field order.
func (s Summary) Text() string {
	var b strings.Builder
	for _, v := range s.Values {
		b.WriteString(v.Field.Label())
		b.WriteString(": ")
		b.WriteString(v.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

func (s Summary) MarshalJSON() ([]byte, error) {
	fields := make(map[string]string, len(s.Values))
	for _, v := range s.Values {
		fields[v.Field.Name()] = v.Value
	}
	return json.Marshal(struct {
		Timestamp time.Time         `json:"timestamp"`
		Fields    map[string]string `json:"fields"`
	}{s.Timestamp, fields})
}
