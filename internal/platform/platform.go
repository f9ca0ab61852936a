// Package platform describes the hardware services hwinfo reads from and
// provides host implementations backed by sysfs, DRM, V4L2, IIO and gopsutil.
package platform

import (
	"context"
	"errors"
	"sync"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

var (
	// ErrUnavailable is returned when a service has no backing hardware.
	ErrUnavailable = errors.New("hardware not available")
	// ErrCameraBusy is returned when another process holds the camera.
	ErrCameraBusy = errors.New("camera busy")
)

// DeviceService reports the device descriptor.
type DeviceService interface {
	Brand(ctx context.Context) (string, error)
}

// DisplayService reports the primary display geometry.
type DisplayService interface {
	Metrics(ctx context.Context) (model.DisplayMetrics, error)
}

// CameraService hands out exclusive camera handles.
type CameraService interface {
	Open(ctx context.Context) (Camera, error)
}

// Camera is an exclusively held camera. Callers must StopPreview and
// Release it before returning.
type Camera interface {
	SupportedPictureSizes() ([]model.Size, error)
	StopPreview() error
	Release() error
}

// SensorEvent is one environmental sensor sample.
type SensorEvent struct {
	Kind  model.SensorKind
	Value float64
}

// SensorService delivers environmental sensor samples.
type SensorService interface {
	Available(kind model.SensorKind) bool
	Subscribe(ctx context.Context, kind model.SensorKind, fn func(SensorEvent)) (Subscription, error)
}

// BatteryEvent is one power status broadcast.
type BatteryEvent struct {
	TemperatureTenths int // tenths of a degree Celsius
}

// PowerService delivers battery status broadcasts.
type PowerService interface {
	Available() bool
	Subscribe(ctx context.Context, fn func(BatteryEvent)) (Subscription, error)
}

// CPUService answers synchronous CPU descriptor queries.
type CPUService interface {
	Family(ctx context.Context) string
	Count(ctx context.Context) (int, error)
	Features(ctx context.Context) (string, error)
}

// Subscription is a registered event handler.
type Subscription interface {
	Unsubscribe()
}

// Platform bundles every service the controller consumes.
type Platform struct {
	Device  DeviceService
	Display DisplayService
	Camera  CameraService
	Sensors SensorService
	Power   PowerService
	CPU     CPUService
}

// loopSubscription stops a forwarding goroutine and waits for it to exit.
type loopSubscription struct {
	once   sync.Once
	cancel context.CancelFunc
	done   <-chan struct{}
}

func (s *loopSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// forward delivers every value from stream to fn until ctx is cancelled.
func forward[T any](ctx context.Context, stream func(context.Context) <-chan T, fn func(T)) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ch := stream(ctx)
	go func() {
		defer close(done)
		for v := range ch {
			if ctx.Err() != nil {
				return
			}
			fn(v)
		}
	}()
	return &loopSubscription{cancel: cancel, done: done}
}
