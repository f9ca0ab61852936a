package platform

import (
	"context"
	"fmt"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

// NoSensors backs a switched-off sensor service.
type NoSensors struct{}

func (NoSensors) Available(model.SensorKind) bool { return false }

func (NoSensors) Subscribe(_ context.Context, kind model.SensorKind, _ func(SensorEvent)) (Subscription, error) {
	return nil, fmt.Errorf("sensor %s: %w", kind, ErrUnavailable)
}

// NoPower backs a switched-off power service.
type NoPower struct{}

func (NoPower) Available() bool { return false }

func (NoPower) Subscribe(context.Context, func(BatteryEvent)) (Subscription, error) {
	return nil, fmt.Errorf("battery: %w", ErrUnavailable)
}
