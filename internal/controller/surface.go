package controller

import (
	"context"
	"sync"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

// TextBuffer is a Surface that keeps the latest summary. Each Publish
// overwrites the whole text.
type TextBuffer struct {
	mu      sync.Mutex
	summary model.Summary
	seq     uint64
	changed chan struct{}
}

func NewTextBuffer() *TextBuffer {
	return &TextBuffer{changed: make(chan struct{})}
}

func (b *TextBuffer) Publish(s model.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summary = s
	b.seq++
	close(b.changed)
	b.changed = make(chan struct{})
}

// Latest returns the current summary and its sequence number; zero means
// nothing has been published yet.
func (b *TextBuffer) Latest() (model.Summary, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary, b.seq
}

// Text renders the current summary.
func (b *TextBuffer) Text() string {
	s, _ := b.Latest()
	return s.Text()
}

// Next waits for a summary newer than after.
func (b *TextBuffer) Next(ctx context.Context, after uint64) (model.Summary, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > after {
			s, seq := b.summary, b.seq
			b.mu.Unlock()
			return s, seq, nil
		}
		ch := b.changed
		b.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return model.Summary{}, after, ctx.Err()
		}
	}
}
