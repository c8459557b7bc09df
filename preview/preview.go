// Package preview mirrors a strip's state to an ANSI console drawer,
// for machines without an SPI port.
package preview

import (
	"context"
	"image"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/ws2812spi/ws2812"
)

const DefaultFPS = 30

// Looper periodically draws the strip's rendered snapshot until its
// context ends.
type Looper struct {
	strip  *ws2812.Strip
	drawer display.Drawer
	fps    int
}

// New builds a looper drawing to a console screen of the given width.
func New(s *ws2812.Strip, width int, fps int) *Looper {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Looper{
		strip:  s,
		drawer: screen.New(width),
		fps:    fps,
	}
}

// Run draws frames at the configured rate until ctx is done. Drawing
// errors end the loop.
func (l *Looper) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.drawer.Draw(l.drawer.Bounds(), l.strip.Image(), image.Point{}); err != nil {
				return err
			}
		}
	}
}
