// Package config loads and validates strip configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ws2812spi/ws2812"
)

type SPI struct {
	// Port is the spireg port name; "" opens the first available port.
	Port string `yaml:"port"`
	// SpeedHz is the bus clock, e.g. 2400000.
	SpeedHz int `yaml:"speed_hz"`
	// ResetBytes overrides the derived reset region size. 0 derives it
	// from speed_hz.
	ResetBytes int `yaml:"reset_bytes"`
}

type Power struct {
	LimitMA int `yaml:"limit_ma"` // 0 disables the cap
}

type Config struct {
	LedCount   int     `yaml:"led_count"`
	ColorOrder string  `yaml:"color_order"`
	Brightness float64 `yaml:"brightness"`

	SPI   SPI   `yaml:"spi,omitempty"`
	Power Power `yaml:"power,omitempty"`
}

// Default returns a protocol-safe configuration: GRB at 2.4MHz with
// the derived 300µs reset margin.
func Default() *Config {
	return &Config{
		LedCount:   24,
		ColorOrder: "GRB",
		Brightness: 1.0,
		SPI: SPI{
			SpeedHz: ws2812.DefaultClockHz,
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the configuration eagerly, before any hardware is
// opened. Timing problems with the chosen clock surface here.
func (c *Config) Validate() error {
	if c.LedCount <= 0 {
		return fmt.Errorf("%w: %d", ws2812.ErrLedCount, c.LedCount)
	}
	if _, ok := ws2812.StringOrders[c.ColorOrder]; !ok {
		return fmt.Errorf("%w: %q", ws2812.ErrChannelOrder, c.ColorOrder)
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		return fmt.Errorf("config: brightness %v outside [0,1]", c.Brightness)
	}
	if c.SPI.ResetBytes < 0 {
		return fmt.Errorf("config: negative reset_bytes %d", c.SPI.ResetBytes)
	}
	if c.Power.LimitMA < 0 {
		return fmt.Errorf("config: negative power limit %dmA", c.Power.LimitMA)
	}
	if err := ws2812.ValidateClock(c.SPI.SpeedHz); err != nil {
		return err
	}
	return nil
}

// Order returns the parsed channel order. Call Validate first.
func (c *Config) Order() int {
	return ws2812.StringOrders[c.ColorOrder]
}

// StripOpts assembles the ws2812 options described by the
// configuration.
func (c *Config) StripOpts() ws2812.StripOpts {
	return ws2812.StripOpts{
		LedCount:       c.LedCount,
		Order:          c.Order(),
		ClockHz:        c.SPI.SpeedHz,
		ResetBytes:     c.SPI.ResetBytes,
		Brightness:     c.Brightness,
		CurrentLimitMA: c.Power.LimitMA,
	}
}
