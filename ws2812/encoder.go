// Package ws2812 drives WS2812-family addressable LED strips over a
// SPI bus. The strip's one-wire NRZ timing is reproduced by
// substituting each protocol bit with a fixed-width SPI bit pattern
// whose high and low runs, at the chosen clock, land inside the
// chip's tolerance windows.
package ws2812

import (
	"fmt"
	"math"
	"time"
)

// WS2812B pulse windows. Nominal ±150ns per the datasheet; the whole
// bit period has a much looser ±600ns.
const (
	t0hNominal = 400 * time.Nanosecond
	t1hNominal = 800 * time.Nanosecond
	t0lNominal = 850 * time.Nanosecond
	t1lNominal = 450 * time.Nanosecond
	pulseTol   = 150 * time.Nanosecond

	bitPeriod    = 1250 * time.Nanosecond
	bitPeriodTol = 600 * time.Nanosecond

	// Latch threshold. Any low stretch longer than this risks being
	// read as a reset, so symbols must keep their low tails well under
	// it.
	resetThreshold = 5 * time.Microsecond

	// DefaultResetDuration is the low period generated before and after
	// active data. The datasheet minimum is 280µs for recent variants;
	// 300µs leaves margin.
	DefaultResetDuration = 300 * time.Microsecond
)

// Encoder translates 8-bit channel values into the SPI bit patterns
// that reproduce the strip's one-wire timing at a given bus clock.
//
// Each protocol bit becomes a fixed-width run of SPI bits: a leading
// high pulse sized to T1H or T0H, then low for the rest of the bit
// period. At 2.4MHz that's the classic 3-bit 0b110/0b100 expansion; at
// 6.4MHz each protocol bit spans a full byte. All 256 channel values
// are expanded into a lookup table at construction, so encoding during
// a render is a copy, not bit arithmetic. The table is never written
// after New and is safe for concurrent readers.
type Encoder struct {
	clockHz    int
	symbolBits int
	oneSym     uint32
	zeroSym    uint32
	lut        [256][]byte
	rev        map[string]byte
}

// NewEncoder derives the symbol patterns for clockHz and precomputes
// the lookup table. Returns ErrTiming if the clock can't realize pulse
// widths inside the tolerance windows.
func NewEncoder(clockHz int) (*Encoder, error) {
	symbolBits, oneHigh, zeroHigh, err := deriveSymbols(clockHz)
	if err != nil {
		return nil, err
	}
	e := &Encoder{
		clockHz:    clockHz,
		symbolBits: symbolBits,
		oneSym:     highRun(oneHigh, symbolBits),
		zeroSym:    highRun(zeroHigh, symbolBits),
		rev:        make(map[string]byte, 256),
	}
	for v := 0; v < 256; v++ {
		e.lut[v] = e.expand(byte(v))
		e.rev[string(e.lut[v])] = byte(v)
	}
	return e, nil
}

// ValidateClock reports whether clockHz can represent the protocol's
// timing with this encoder's fixed-width symbols.
func ValidateClock(clockHz int) error {
	_, _, _, err := deriveSymbols(clockHz)
	return err
}

// deriveSymbols picks the symbol width and high-pulse lengths (in SPI
// bits) nearest the nominal timings, then checks every realizable
// duration against its window.
func deriveSymbols(clockHz int) (symbolBits, oneHigh, zeroHigh int, err error) {
	if clockHz <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: %d Hz", ErrTiming, clockHz)
	}
	tick := float64(time.Second) / float64(clockHz) // ns per SPI bit

	symbolBits = int(math.Round(float64(bitPeriod) / tick))
	oneHigh = int(math.Round(float64(t1hNominal) / tick))
	zeroHigh = int(math.Round(float64(t0hNominal) / tick))

	if symbolBits < 3 || symbolBits > 32 {
		return 0, 0, 0, fmt.Errorf("%w: %d Hz needs %d SPI bits per protocol bit", ErrTiming, clockHz, symbolBits)
	}
	if zeroHigh < 1 || oneHigh <= zeroHigh || oneHigh >= symbolBits {
		return 0, 0, 0, fmt.Errorf("%w: %d Hz yields degenerate pulses (symbol %d, T1H %d, T0H %d bits)",
			ErrTiming, clockHz, symbolBits, oneHigh, zeroHigh)
	}

	dur := func(bits int) time.Duration {
		return time.Duration(float64(bits) * tick)
	}
	checks := []struct {
		name    string
		got     time.Duration
		nominal time.Duration
		tol     time.Duration
	}{
		{"T1H", dur(oneHigh), t1hNominal, pulseTol},
		{"T0H", dur(zeroHigh), t0hNominal, pulseTol},
		{"T1L", dur(symbolBits - oneHigh), t1lNominal, pulseTol},
		{"T0L", dur(symbolBits - zeroHigh), t0lNominal, pulseTol},
		{"bit period", dur(symbolBits), bitPeriod, bitPeriodTol},
	}
	for _, c := range checks {
		if c.got < c.nominal-c.tol || c.got > c.nominal+c.tol {
			return 0, 0, 0, fmt.Errorf("%w: %d Hz puts %s at %s, outside %s±%s",
				ErrTiming, clockHz, c.name, c.got, c.nominal, c.tol)
		}
	}
	// Both symbols end low, so the longest low run inside active data is
	// T0L followed by the next symbol's rising edge. Guard it anyway.
	if dur(symbolBits-zeroHigh) >= resetThreshold {
		return 0, 0, 0, fmt.Errorf("%w: %d Hz low tail %s reads as a latch", ErrTiming, clockHz, dur(symbolBits-zeroHigh))
	}
	return symbolBits, oneHigh, zeroHigh, nil
}

// highRun builds a symbol of ones SPI-high bits followed by lows,
// MSB-justified within width bits.
func highRun(ones, width int) uint32 {
	var s uint32
	for i := 0; i < width; i++ {
		s <<= 1
		if i < ones {
			s |= 1
		}
	}
	return s
}

// expand encodes one channel value, MSB first.
func (e *Encoder) expand(v byte) []byte {
	out := make([]byte, e.symbolBits)
	var acc uint64
	accBits := 0
	idx := 0
	for i := 7; i >= 0; i-- {
		sym := e.zeroSym
		if v&(1<<uint(i)) != 0 {
			sym = e.oneSym
		}
		acc = acc<<uint(e.symbolBits) | uint64(sym)
		accBits += e.symbolBits
		for accBits >= 8 {
			out[idx] = byte(acc >> uint(accBits-8))
			accBits -= 8
			idx++
		}
	}
	return out
}

// ClockHz returns the SPI clock the table was built for.
func (e *Encoder) ClockHz() int {
	return e.clockHz
}

// EncodedLen returns the number of SPI bytes one channel value encodes
// to. 8 protocol bits at symbolBits SPI bits each is always a whole
// number of bytes.
func (e *Encoder) EncodedLen() int {
	return e.symbolBits
}

// SymbolBits returns the number of SPI bits per protocol bit.
func (e *Encoder) SymbolBits() int {
	return e.symbolBits
}

// AppendByte appends the encoded form of v to dst.
func (e *Encoder) AppendByte(dst []byte, v byte) []byte {
	return append(dst, e.lut[v]...)
}

// EncodeByte copies the encoded form of v into dst, which must have at
// least EncodedLen bytes.
func (e *Encoder) EncodeByte(dst []byte, v byte) {
	copy(dst, e.lut[v])
}

// Decode reverses active-region bytes back into channel values. The
// input length must be a multiple of EncodedLen and every chunk must be
// a table entry.
func (e *Encoder) Decode(active []byte) ([]byte, error) {
	if len(active)%e.symbolBits != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of channels", ErrDecode, len(active))
	}
	out := make([]byte, 0, len(active)/e.symbolBits)
	for i := 0; i < len(active); i += e.symbolBits {
		v, ok := e.rev[string(active[i:i+e.symbolBits])]
		if !ok {
			return nil, fmt.Errorf("%w: unknown symbol sequence at byte %d", ErrDecode, i)
		}
		out = append(out, v)
	}
	return out, nil
}

// DefaultResetBytes returns how many zero bytes hold the line low for
// DefaultResetDuration at clockHz.
func DefaultResetBytes(clockHz int) int {
	bits := float64(clockHz) * DefaultResetDuration.Seconds()
	return int(math.Ceil(bits / 8))
}
