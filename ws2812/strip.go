package ws2812

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
)

// Transport abstracts the SPI write primitive. Tx must be a
// synchronous, ordered, whole-buffer transmission.
type Transport interface {
	Tx(p []byte) error
}

// StripOpts configures a Strip. The zero value of Order is GRB, the
// most common WS2812 wiring.
type StripOpts struct {
	// LedCount is the number of pixels on the strip. Required.
	LedCount int
	// Order is the chip variant's channel order (GRB, RGB, ...).
	Order int
	// ClockHz is the SPI bus clock. 0 means 2.4MHz.
	ClockHz int
	// ResetBytes sizes each reset region. 0 derives it from ClockHz.
	ResetBytes int
	// Brightness is the initial global scale in [0,1]. 0 means full.
	Brightness float64
	// CurrentLimitMA caps the estimated strip draw. 0 disables the cap.
	CurrentLimitMA int
}

// DefaultClockHz is the bus clock used when StripOpts leaves it unset.
// It yields the 3-bit 110/100 symbol expansion.
const DefaultClockHz = 2400000

// Per-channel drive current at full brightness and quiescent draw per
// package, used by the current limiter.
const (
	channelFullMA = 20.0
	idlePerLedMA  = 1.0
)

// Strip owns the logical color state for a run of LEDs and pushes it
// to the hardware through a Transport. The pixel buffer is fixed-size,
// zero-initialized (all LEDs off) and mutated only through the strip's
// methods; nothing reaches the wire until Render.
//
// A single mutex serializes mutations and renders, so one Strip may be
// shared between goroutines. Renders are strictly sequential: the
// transport write completes or fails before Render returns.
type Strip struct {
	mu         sync.Mutex
	pixels     []Color
	scratch    []Color
	frame      []byte
	fb         *FrameBuilder
	tr         Transport
	brightness float64
	limitMA    int
}

// NewStrip builds the encoder and frame builder for opts and returns a
// dark strip. Configuration problems, including a clock that can't
// meet the protocol timing, surface here rather than at render time.
func NewStrip(tr Transport, opts StripOpts) (*Strip, error) {
	if tr == nil {
		return nil, fmt.Errorf("ws2812: nil transport")
	}
	clock := opts.ClockHz
	if clock == 0 {
		clock = DefaultClockHz
	}
	enc, err := NewEncoder(clock)
	if err != nil {
		return nil, err
	}
	fb, err := NewFrameBuilder(enc, opts.LedCount, opts.Order, opts.ResetBytes)
	if err != nil {
		return nil, err
	}
	brightness := opts.Brightness
	if brightness == 0 {
		brightness = 1.0
	}
	if brightness < 0 || brightness > 1 {
		return nil, fmt.Errorf("ws2812: brightness %v outside [0,1]", opts.Brightness)
	}
	if opts.CurrentLimitMA < 0 {
		return nil, fmt.Errorf("ws2812: negative current limit %dmA", opts.CurrentLimitMA)
	}
	return &Strip{
		pixels:     make([]Color, opts.LedCount),
		scratch:    make([]Color, opts.LedCount),
		frame:      make([]byte, fb.FrameLen()),
		fb:         fb,
		tr:         tr,
		brightness: brightness,
		limitMA:    opts.CurrentLimitMA,
	}, nil
}

// Len returns the number of pixels.
func (s *Strip) Len() int {
	return len(s.pixels)
}

// FrameLen returns the length of every transmit frame.
func (s *Strip) FrameLen() int {
	return s.fb.FrameLen()
}

// SetPixel stores c at index i. The change is local until Render.
func (s *Strip) SetPixel(i int, c Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.pixels) {
		return fmt.Errorf("%w: %d (strip has %d)", ErrPixelRange, i, len(s.pixels))
	}
	s.pixels[i] = c
	return nil
}

// PixelAt returns the stored color at index i.
func (s *Strip) PixelAt(i int) (Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.pixels) {
		return Color{}, fmt.Errorf("%w: %d (strip has %d)", ErrPixelRange, i, len(s.pixels))
	}
	return s.pixels[i], nil
}

// Fill sets every pixel to c.
func (s *Strip) Fill(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pixels {
		s.pixels[i] = c
	}
}

// Clear turns every pixel off.
func (s *Strip) Clear() {
	s.Fill(Color{})
}

// Pixels returns a copy of the pixel buffer.
func (s *Strip) Pixels() []Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Color, len(s.pixels))
	copy(out, s.pixels)
	return out
}

// SetBrightness sets the global scale applied at render time. Values
// are clamped into [0,1]; the stored pixels are never modified.
func (s *Strip) SetBrightness(b float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brightness = math.Max(0, math.Min(b, 1))
}

// Brightness returns the current global scale.
func (s *Strip) Brightness() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness
}

// SetCurrentLimit caps the estimated draw of rendered frames at
// limitMA milliamps. 0 disables the cap.
func (s *Strip) SetCurrentLimit(limitMA int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limitMA < 0 {
		limitMA = 0
	}
	s.limitMA = limitMA
}

// Render builds a frame from the current state and writes it through
// the transport. It blocks until the write completes; transport errors
// are propagated unchanged and never retried, since a partial frame
// may already be latched. After a failed render the physical strip
// must be assumed stale.
func (s *Strip) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot()
	if err := s.fb.BuildInto(s.frame, s.scratch); err != nil {
		return err
	}
	return s.tr.Tx(s.frame)
}

// snapshot scales the pixel buffer by brightness and the current cap
// into scratch. Callers hold mu.
func (s *Strip) snapshot() {
	scale := s.brightness
	if s.limitMA > 0 {
		if f := s.limitFactor(); f < 1 {
			scale *= f
		}
	}
	for i, p := range s.pixels {
		s.scratch[i] = Color{
			R: scaleChan(p.R, scale),
			G: scaleChan(p.G, scale),
			B: scaleChan(p.B, scale),
			W: scaleChan(p.W, scale),
		}
	}
}

// limitFactor estimates the frame's draw at the current brightness and
// returns the uniform scale keeping it under the cap. Callers hold mu.
func (s *Strip) limitFactor() float64 {
	drive := 0.0
	for _, p := range s.pixels {
		sum := float64(p.R) + float64(p.G) + float64(p.B)
		if s.fb.Channels() == 4 {
			sum += float64(p.W)
		}
		drive += sum / 255.0 * channelFullMA * s.brightness
	}
	idle := float64(len(s.pixels)) * idlePerLedMA
	if drive <= 0 || drive+idle <= float64(s.limitMA) {
		return 1
	}
	f := (float64(s.limitMA) - idle) / drive
	return math.Max(0, f)
}

func scaleChan(v uint8, scale float64) uint8 {
	return uint8(math.Round(float64(v) * scale))
}

// Image returns a 1×N snapshot of the strip as it would light up,
// brightness and current cap applied, for preview drawers.
func (s *Strip) Image() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot()
	img := image.NewNRGBA(image.Rect(0, 0, len(s.pixels), 1))
	for i, p := range s.scratch {
		img.SetNRGBA(i, 0, toNRGBA(p))
	}
	return img
}

func toNRGBA(p Color) color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: 255}
}
