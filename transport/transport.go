// Package transport provides the bus primitives a strip renders
// through: a spidev-backed SPI port and an in-memory recorder for
// tests and headless runs.
package transport

import (
	"errors"
	"sync"
)

// ErrClosed reports a write on a closed transport.
var ErrClosed = errors.New("transport: closed")

// Transport is a synchronous, ordered, whole-buffer byte sink.
type Transport interface {
	Tx(p []byte) error
	Close() error
}

// Recorder captures every frame written to it. It satisfies Transport
// and is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *Recorder) Tx(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame := make([]byte, len(p))
	copy(frame, p)
	r.frames = append(r.frames, frame)
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Count returns how many frames have been written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Last returns the most recent frame, or nil if none were written.
func (r *Recorder) Last() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// Frames returns all captured frames.
func (r *Recorder) Frames() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.frames))
	copy(out, r.frames)
	return out
}
