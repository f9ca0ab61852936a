package platform

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

// HostCamera opens a V4L2 capture device. Only Linux has a backend;
// elsewhere Open reports ErrUnavailable.
type HostCamera struct {
	Device string // e.g. /dev/video0
}

func (c *HostCamera) Open(ctx context.Context) (Camera, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Device == "" {
		return nil, fmt.Errorf("camera: %w", ErrUnavailable)
	}
	return openV4L2(c.Device)
}

// uniqueSizes drops duplicates reported by several pixel formats.
func uniqueSizes(sizes []model.Size) []model.Size {
	seen := make(map[model.Size]struct{}, len(sizes))
	out := sizes[:0]
	for _, s := range sizes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pixels() > out[j].Pixels() })
	return out
}
