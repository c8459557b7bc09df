package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ws2812spi/config"
	"github.com/coreman2200/ws2812spi/effects"
	"github.com/coreman2200/ws2812spi/preview"
	"github.com/coreman2200/ws2812spi/transport"
	"github.com/coreman2200/ws2812spi/ws2812"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (optional)")
		port       = flag.String("port", "", "SPI port name; empty for the first available")
		ledCount   = flag.Int("led-count", 24, "number of LEDs on the strip")
		colorOrder = flag.String("color", "GRB", "LED color order (e.g. GRB, RGB, GRBW)")
		speedHz    = flag.Int("speed-hz", ws2812.DefaultClockHz, "SPI clock rate")
		brightness = flag.Float64("brightness", 1.0, "global brightness 0..1")
		limitMA    = flag.Int("power-limit-ma", 0, "current cap in mA, 0 for none")
		usePreview = flag.Bool("preview", false, "force console preview (no hardware output)")
		width      = flag.Int("preview-width", 80, "console preview width")
		delay      = flag.Duration("delay", 100*time.Millisecond, "rotate step delay")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := config.Default()
	cfg.LedCount = *ledCount
	cfg.ColorOrder = *colorOrder
	cfg.Brightness = *brightness
	cfg.SPI.Port = *port
	cfg.SPI.SpeedHz = *speedHz
	cfg.Power.LimitMA = *limitMA
	if *configPath != "" {
		if c, err := config.Load(*configPath); err != nil {
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		} else {
			cfg = c
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tr transport.Transport
	previewing := *usePreview
	if !previewing {
		spi, err := transport.OpenSPI(cfg.SPI.Port, cfg.SPI.SpeedHz)
		if err != nil {
			log.Warn().Err(err).Str("port", cfg.SPI.Port).Msg("SPI open failed; falling back to console preview")
			previewing = true
		} else {
			tr = spi
		}
	}
	if previewing {
		tr = &transport.Recorder{}
	}
	defer tr.Close()

	strip, err := ws2812.NewStrip(tr, cfg.StripOpts())
	if err != nil {
		log.Fatal().Err(err).Msg("strip init failed")
	}

	if previewing {
		go func() {
			if err := preview.New(strip, *width, preview.DefaultFPS).Run(ctx); err != nil {
				log.Error().Err(err).Msg("preview loop failed")
			}
		}()
	}

	log.Info().
		Int("leds", cfg.LedCount).
		Str("order", cfg.ColorOrder).
		Int("speed_hz", cfg.SPI.SpeedHz).
		Bool("preview", previewing).
		Msg("strip ready")

	if err := demo(ctx, strip, *delay); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("demo failed")
	}

	// Leave the strip dark on the way out, even after a cancel.
	strip.Clear()
	if err := strip.Render(); err != nil {
		log.Error().Err(err).Msg("final clear failed")
	}
}

// demo runs the showcase sequence: white, off, a rotating white dot,
// blue, green, then a white breathing pattern.
func demo(ctx context.Context, strip *ws2812.Strip, delay time.Duration) error {
	white := ws2812.Color{R: 255, G: 255, B: 255}
	steps := []struct {
		name   string
		effect effects.Effect
	}{
		{"all white", effects.NewFill(white)},
		{"all off", effects.NewFill(ws2812.Color{})},
		{"white rotate", rotatingDot(strip, white, delay)},
		{"all blue", effects.NewFill(ws2812.Color{B: 255})},
		{"all green", effects.NewFill(ws2812.Color{G: 255})},
		{"white on for breathe", effects.NewFill(white)},
		{"white breathing", effects.NewBreathe(3, 5*time.Second, 0)},
		{"all off", effects.NewFill(ws2812.Color{})},
	}
	for _, s := range steps {
		log.Info().Str("step", s.name).Msg("running")
		if err := effects.Run(ctx, strip, s.effect, nil); err != nil {
			return err
		}
		if err := effects.Wall.Sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}
	return nil
}

// rotatingDot seeds a single lit pixel and rotates it five times
// around the strip.
func rotatingDot(strip *ws2812.Strip, c ws2812.Color, delay time.Duration) effects.Effect {
	strip.Clear()
	strip.SetPixel(0, c)
	return effects.NewRotate(strip.Len()*5, delay)
}
