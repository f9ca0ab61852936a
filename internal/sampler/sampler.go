package sampler

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sampler periodically reads one value and emits it whenever it changes.
// Failed reads are skipped; the stream keeps polling.
type Sampler[T comparable] struct {
	Interval time.Duration
	Read     func(ctx context.Context) (T, error)
}

func New[T comparable](interval time.Duration, read func(ctx context.Context) (T, error)) *Sampler[T] {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler[T]{Interval: interval, Read: read}
}

// Stream returns a channel that receives the first successful read and every
// later read that differs from the previously emitted one, until ctx is done.
func (s *Sampler[T]) Stream(ctx context.Context) <-chan T {
	ch := make(chan T)
	go func() {
		defer close(ch)
		var (
			last T
			seen bool
		)
		emit := func() bool {
			v, err := s.Read(ctx)
			if err != nil || (seen && v == last) {
				return true
			}
			select {
			case ch <- v:
				last, seen = v, true
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !emit() {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Helpers

// ParseFloat trims whitespace and a trailing percent sign.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	return strconv.ParseFloat(s, 64)
}

// ReadFloat reads a single numeric sysfs attribute.
func ReadFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return ParseFloat(string(b))
}

// ReadString reads a sysfs attribute with surrounding whitespace removed.
func ReadString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
