package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPI drives a spidev port through periph.io. The strip protocol only
// needs MOSI; MISO and chip-select are ignored.
type SPI struct {
	mu     sync.Mutex
	closer io.Closer
	conn   spi.Conn
}

// OpenSPI initializes the host, opens the named SPI port ("" means the
// first available) and connects it at clockHz in mode 0 with 8-bit
// words.
func OpenSPI(name string, clockHz int) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("transport: host init: %w", err)
	}
	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("transport: open %q: %w", name, err)
	}
	s, err := NewSPI(port, clockHz)
	if err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI connects an already opened port at clockHz. Exposed so tests
// can supply a spitest port.
func NewSPI(port spi.Port, clockHz int) (*SPI, error) {
	conn, err := port.Connect(physic.Frequency(clockHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("transport: connect at %d Hz: %w", clockHz, err)
	}
	if p, ok := conn.(spi.Pins); ok {
		log.Debug().
			Str("clk", p.CLK().String()).
			Str("mosi", p.MOSI().String()).
			Msg("SPI port connected")
	}
	s := &SPI{conn: conn}
	if c, ok := port.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

// Tx writes p in a single transaction.
func (s *SPI) Tx(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrClosed
	}
	if err := s.conn.Tx(p, nil); err != nil {
		return fmt.Errorf("transport: spi write: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	s.conn = nil
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
