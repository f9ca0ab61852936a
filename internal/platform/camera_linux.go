//go:build linux

package platform

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

// From linux/videodev2.h.
const (
	vidiocEnumFmt        = 0xc0405602 // _IOWR('V', 2, struct v4l2_fmtdesc)
	vidiocEnumFramesizes = 0xc02c564a // _IOWR('V', 74, struct v4l2_frmsizeenum)

	bufTypeVideoCapture = 1

	frmsizeTypeDiscrete   = 1
	frmsizeTypeContinuous = 2
	frmsizeTypeStepwise   = 3
)

type v4l2FmtDesc struct {
	Index       uint32
	Type        uint32
	Flags       uint32
	Description [32]byte
	PixelFormat uint32
	MbusCode    uint32
	Reserved    [3]uint32
}

// Size union: discrete {width, height} or stepwise
// {min_w, max_w, step_w, min_h, max_h, step_h}.
type v4l2FrmSizeEnum struct {
	Index       uint32
	PixelFormat uint32
	Type        uint32
	Size        [6]uint32
	Reserved    [2]uint32
}

type v4l2Camera struct {
	mu     sync.Mutex
	fd     int
	closed bool
}

func openV4L2(path string) (Camera, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENODEV) {
			return nil, fmt.Errorf("camera %s: %w", path, ErrUnavailable)
		}
		return nil, fmt.Errorf("open camera %s: %w", path, err)
	}
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = unix.Close(fd)
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("camera %s: %w", path, ErrCameraBusy)
		}
		return nil, fmt.Errorf("lock camera %s: %w", path, err)
	}
	return &v4l2Camera{fd: fd}, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (c *v4l2Camera) SupportedPictureSizes() ([]model.Size, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("camera released")
	}

	var sizes []model.Size
	for i := uint32(0); ; i++ {
		desc := v4l2FmtDesc{Index: i, Type: bufTypeVideoCapture}
		if err := ioctl(c.fd, vidiocEnumFmt, unsafe.Pointer(&desc)); err != nil {
			if errors.Is(err, unix.EINVAL) {
				break
			}
			return nil, fmt.Errorf("enumerate formats: %w", err)
		}
		fs, err := c.frameSizes(desc.PixelFormat)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, fs...)
	}
	return uniqueSizes(sizes), nil
}

func (c *v4l2Camera) frameSizes(pixfmt uint32) ([]model.Size, error) {
	var sizes []model.Size
	for i := uint32(0); ; i++ {
		fs := v4l2FrmSizeEnum{Index: i, PixelFormat: pixfmt}
		if err := ioctl(c.fd, vidiocEnumFramesizes, unsafe.Pointer(&fs)); err != nil {
			if errors.Is(err, unix.EINVAL) {
				return sizes, nil
			}
			return nil, fmt.Errorf("enumerate frame sizes: %w", err)
		}
		switch fs.Type {
		case frmsizeTypeDiscrete:
			sizes = append(sizes, model.Size{Width: int(fs.Size[0]), Height: int(fs.Size[1])})
		case frmsizeTypeContinuous, frmsizeTypeStepwise:
			// Only index 0 is valid; the maximum is all we need.
			return append(sizes, model.Size{Width: int(fs.Size[1]), Height: int(fs.Size[4])}), nil
		}
	}
}

// StopPreview is a no-op: hwinfo never starts streaming.
func (c *v4l2Camera) StopPreview() error { return nil }

func (c *v4l2Camera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = unix.Flock(c.fd, unix.LOCK_UN)
	return unix.Close(c.fd)
}
