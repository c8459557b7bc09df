// Package effects is a library of lighting patterns over a strip. An
// effect is a stepper: Start primes it, each NextStep mutates the
// pixel buffer and says how long to wait before the next step. The Run
// loop renders after every step on the caller's goroutine; nothing
// here spawns background work.
package effects

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ws2812spi/ws2812"
)

type Effect interface {
	// Start primes the effect against the strip's current state.
	Start(s *ws2812.Strip, now time.Time)
	// NextStep performs one mutation and returns the delay before the
	// next step. 0 means the effect is finished.
	NextStep(s *ws2812.Strip, now time.Time) time.Duration
	Name() string
}

// Run drives e to completion: one render per step, blocking waits in
// between. Cancellation is checked only between steps, so the strip is
// always left in a fully rendered state; a cancelled run returns
// ctx.Err(). A render failure aborts the effect with that error.
func Run(ctx context.Context, s *ws2812.Strip, e Effect, clk Clock) error {
	if clk == nil {
		clk = Wall
	}
	now := clk.Now()
	e.Start(s, now)
	for {
		d := e.NextStep(s, now)
		if err := s.Render(); err != nil {
			return err
		}
		if d == 0 {
			return nil
		}
		if err := clk.Sleep(ctx, d); err != nil {
			return err
		}
		now = clk.Now()
	}
}

// Fill sets the whole strip to one color in a single step.
type Fill struct {
	color ws2812.Color
}

func NewFill(c ws2812.Color) *Fill {
	return &Fill{color: c}
}

func (f *Fill) Start(s *ws2812.Strip, now time.Time) {
	log.Debug().Str("color", f.color.String()).Msg("starting Fill")
}

func (f *Fill) NextStep(s *ws2812.Strip, now time.Time) time.Duration {
	s.Fill(f.color)
	return 0
}

func (f *Fill) Name() string {
	return "FILL"
}

// Rotate shifts the whole pattern one position toward higher indices
// per step, wrapping the last pixel to index 0: [A,B,C,D] becomes
// [D,A,B,C] after one step.
type Rotate struct {
	steps    int
	interval time.Duration
	done     int
}

// NewRotate rotates steps times at the given interval. steps <= 0
// rotates until the Run context is cancelled.
func NewRotate(steps int, interval time.Duration) *Rotate {
	return &Rotate{steps: steps, interval: interval}
}

func (r *Rotate) Start(s *ws2812.Strip, now time.Time) {
	log.Debug().Int("steps", r.steps).Dur("interval", r.interval).Msg("starting Rotate")
	r.done = 0
}

func (r *Rotate) NextStep(s *ws2812.Strip, now time.Time) time.Duration {
	pix := s.Pixels()
	n := len(pix)
	for i := 0; i < n; i++ {
		s.SetPixel((i+1)%n, pix[i])
	}
	r.done++
	if r.steps > 0 && r.done >= r.steps {
		return 0
	}
	return r.interval
}

func (r *Rotate) Name() string {
	return "ROTATE"
}

// Fade interpolates every pixel linearly from its value at Start to
// dest over fadeTime.
type Fade struct {
	fadeTime time.Duration
	interval time.Duration
	dest     ws2812.Color
	startPix []ws2812.Color
	start    time.Time
}

// NewFade fades to dest over fadeTime, stepping every interval. An
// interval of 0 uses fadeTime/64.
func NewFade(fadeTime time.Duration, interval time.Duration, dest ws2812.Color) *Fade {
	if interval == 0 {
		interval = fadeTime / 64
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Fade{fadeTime: fadeTime, interval: interval, dest: dest}
}

func (f *Fade) Start(s *ws2812.Strip, now time.Time) {
	log.Debug().Str("dest", f.dest.String()).Dur("fade", f.fadeTime).Msg("starting Fade")
	f.startPix = s.Pixels()
	f.start = now
}

func (f *Fade) NextStep(s *ws2812.Strip, now time.Time) time.Duration {
	pct := float64(now.Sub(f.start)) / float64(f.fadeTime)
	if pct >= 1.0 {
		s.Fill(f.dest)
		return 0
	}
	for i, v := range f.startPix {
		s.SetPixel(i, ws2812.Color{
			R: lerpChan(v.R, f.dest.R, pct),
			G: lerpChan(v.G, f.dest.G, pct),
			B: lerpChan(v.B, f.dest.B, pct),
			W: lerpChan(v.W, f.dest.W, pct),
		})
	}
	return f.interval
}

func (f *Fade) Name() string {
	return "FADE"
}

func lerpChan(from, to uint8, pct float64) uint8 {
	return uint8(math.Round(float64(from) + (float64(to)-float64(from))*pct))
}

// Breathe modulates the strip's global brightness with a triangle wave
// over the displayed pattern, restoring the original brightness when
// the last cycle completes.
type Breathe struct {
	cycles   int
	period   time.Duration
	interval time.Duration
	base     float64
	start    time.Time
}

// NewBreathe runs cycles triangle waves of the given period, stepping
// every interval. An interval of 0 uses period/50.
func NewBreathe(cycles int, period, interval time.Duration) *Breathe {
	if interval == 0 {
		interval = period / 50
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Breathe{cycles: cycles, period: period, interval: interval}
}

func (b *Breathe) Start(s *ws2812.Strip, now time.Time) {
	log.Debug().Int("cycles", b.cycles).Dur("period", b.period).Msg("starting Breathe")
	b.base = s.Brightness()
	b.start = now
}

func (b *Breathe) NextStep(s *ws2812.Strip, now time.Time) time.Duration {
	elapsed := now.Sub(b.start)
	if elapsed >= time.Duration(b.cycles)*b.period {
		s.SetBrightness(b.base)
		return 0
	}
	pos := float64(elapsed%b.period) / float64(b.period)
	s.SetBrightness(1 - math.Abs(2*pos-1))
	return b.interval
}

func (b *Breathe) Name() string {
	return "BREATHE"
}

// Zip fills the strip with dest one pixel at a time, head to tail,
// over zipTime.
type Zip struct {
	zipTime time.Duration
	dest    ws2812.Color
	start   time.Time
	lastSet int
}

func NewZip(zipTime time.Duration, dest ws2812.Color) *Zip {
	return &Zip{zipTime: zipTime, dest: dest, lastSet: -1}
}

func (z *Zip) Start(s *ws2812.Strip, now time.Time) {
	log.Debug().Str("dest", z.dest.String()).Msg("starting Zip")
	z.start = now
	z.lastSet = -1
}

func (z *Zip) NextStep(s *ws2812.Strip, now time.Time) time.Duration {
	n := s.Len()
	p := int(float64(now.Sub(z.start)) / float64(z.zipTime) * float64(n))
	for i := z.lastSet + 1; i < n && i <= p; i++ {
		s.SetPixel(i, z.dest)
		z.lastSet = i
	}
	if p >= n {
		return 0
	}
	return time.Duration(z.zipTime.Nanoseconds() / int64(n))
}

func (z *Zip) Name() string {
	return "ZIP"
}
