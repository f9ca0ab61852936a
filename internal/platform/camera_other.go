//go:build !linux

package platform

import "fmt"

func openV4L2(path string) (Camera, error) {
	return nil, fmt.Errorf("camera %s: %w", path, ErrUnavailable)
}
