package effects

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ws2812spi/transport"
	"github.com/coreman2200/ws2812spi/ws2812"
)

// fakeClock advances instantly on Sleep, so effects run to completion
// without real waits.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.t = c.t.Add(d)
	return nil
}

func newTestStrip(t *testing.T, n int) (*ws2812.Strip, *transport.Recorder) {
	t.Helper()
	rec := &transport.Recorder{}
	s, err := ws2812.NewStrip(rec, ws2812.StripOpts{LedCount: n})
	require.NoError(t, err)
	return s, rec
}

func TestRotateOneStep(t *testing.T) {
	s, rec := newTestStrip(t, 4)
	a := ws2812.Color{R: 1}
	b := ws2812.Color{G: 1}
	c := ws2812.Color{B: 1}
	d := ws2812.Color{R: 2}
	for i, p := range []ws2812.Color{a, b, c, d} {
		require.NoError(t, s.SetPixel(i, p))
	}

	clk := &fakeClock{t: time.Unix(0, 0)}
	err := Run(context.Background(), s, NewRotate(1, 10*time.Millisecond), clk)
	require.NoError(t, err)

	assert.Equal(t, []ws2812.Color{d, a, b, c}, s.Pixels())
	assert.Equal(t, 1, rec.Count())
}

func TestRotateFullCircle(t *testing.T) {
	s, rec := newTestStrip(t, 5)
	require.NoError(t, s.SetPixel(0, ws2812.Color{R: 255}))
	start := s.Pixels()

	clk := &fakeClock{t: time.Unix(0, 0)}
	err := Run(context.Background(), s, NewRotate(5, time.Millisecond), clk)
	require.NoError(t, err)

	assert.Equal(t, start, s.Pixels())
	assert.Equal(t, 5, rec.Count())
}

func TestFillRendersOnce(t *testing.T) {
	s, rec := newTestStrip(t, 3)
	blue := ws2812.Color{B: 255}
	err := Run(context.Background(), s, NewFill(blue), &fakeClock{})
	require.NoError(t, err)

	assert.Equal(t, []ws2812.Color{blue, blue, blue}, s.Pixels())
	assert.Equal(t, 1, rec.Count())
}

func TestFadeReachesDestLinearly(t *testing.T) {
	s, rec := newTestStrip(t, 4)
	dest := ws2812.Color{R: 100, G: 200}

	clk := &fakeClock{t: time.Unix(0, 0)}
	fade := NewFade(time.Second, 250*time.Millisecond, dest)

	// Drive the steps by hand to observe the midpoint.
	fade.Start(s, clk.t)
	fade.NextStep(s, clk.t) // t=0
	clk.t = clk.t.Add(500 * time.Millisecond)
	fade.NextStep(s, clk.t)
	mid, err := s.PixelAt(0)
	require.NoError(t, err)
	assert.Equal(t, ws2812.Color{R: 50, G: 100}, mid)

	clk.t = clk.t.Add(500 * time.Millisecond)
	d := fade.NextStep(s, clk.t)
	assert.Equal(t, time.Duration(0), d)
	assert.Equal(t, dest, s.Pixels()[3])
	assert.Zero(t, rec.Count(), "stepping by hand must not render")
}

func TestFadeUnderRun(t *testing.T) {
	s, rec := newTestStrip(t, 2)
	dest := ws2812.Color{B: 80}
	clk := &fakeClock{t: time.Unix(0, 0)}
	err := Run(context.Background(), s, NewFade(time.Second, 250*time.Millisecond, dest), clk)
	require.NoError(t, err)

	// Steps at 0ms, 250, 500, 750 and the final snap to dest.
	assert.Equal(t, 5, rec.Count())
	assert.Equal(t, []ws2812.Color{dest, dest}, s.Pixels())
}

func TestBreatheRestoresBrightness(t *testing.T) {
	s, rec := newTestStrip(t, 2)
	s.SetBrightness(0.8)
	s.Fill(ws2812.Color{R: 255, G: 255, B: 255})

	clk := &fakeClock{t: time.Unix(0, 0)}
	err := Run(context.Background(), s, NewBreathe(1, time.Second, 250*time.Millisecond), clk)
	require.NoError(t, err)

	assert.Equal(t, 0.8, s.Brightness())
	assert.Equal(t, 5, rec.Count())
}

func TestBreathePeaksMidCycle(t *testing.T) {
	s, _ := newTestStrip(t, 1)
	clk := &fakeClock{t: time.Unix(0, 0)}
	b := NewBreathe(1, time.Second, 0)
	b.Start(s, clk.t)

	b.NextStep(s, clk.t)
	assert.Equal(t, 0.0, s.Brightness())
	clk.t = clk.t.Add(500 * time.Millisecond)
	b.NextStep(s, clk.t)
	assert.Equal(t, 1.0, s.Brightness())
}

func TestZipFillsHeadToTail(t *testing.T) {
	s, rec := newTestStrip(t, 4)
	dest := ws2812.Color{G: 255}
	clk := &fakeClock{t: time.Unix(0, 0)}
	err := Run(context.Background(), s, NewZip(time.Second, dest), clk)
	require.NoError(t, err)

	assert.Equal(t, []ws2812.Color{dest, dest, dest, dest}, s.Pixels())
	assert.Equal(t, 5, rec.Count())
}

func TestRunCancelBetweenSteps(t *testing.T) {
	s, rec := newTestStrip(t, 4)
	require.NoError(t, s.SetPixel(0, ws2812.Color{R: 9}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clk := &fakeClock{t: time.Unix(0, 0)}
	err := Run(ctx, s, NewRotate(0, 10*time.Millisecond), clk)
	assert.ErrorIs(t, err, context.Canceled)

	// The step that ran was rendered in full before the cancel took
	// effect.
	assert.Equal(t, 1, rec.Count())
}

func TestRunStopsOnRenderError(t *testing.T) {
	rec := &closedTransport{}
	s, err := ws2812.NewStrip(rec, ws2812.StripOpts{LedCount: 2})
	require.NoError(t, err)

	runErr := Run(context.Background(), s, NewFill(ws2812.Color{R: 1}), &fakeClock{})
	assert.ErrorIs(t, runErr, transport.ErrClosed)
}

type closedTransport struct{}

func (closedTransport) Tx(p []byte) error {
	return transport.ErrClosed
}
