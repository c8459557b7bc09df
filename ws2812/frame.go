package ws2812

import "fmt"

// FrameBuilder assembles complete transmit frames: a leading reset
// region of zero bytes, every pixel's channels in wire order encoded
// through the lookup table, and a trailing reset region. Building is
// pure; the same pixels always produce byte-identical frames.
type FrameBuilder struct {
	enc        *Encoder
	ledCount   int
	order      []int
	channels   int
	resetBytes int
}

// NewFrameBuilder configures a builder for a strip of ledCount pixels
// in the given channel order. resetBytes sizes each reset region; 0
// picks the default for the encoder's clock.
func NewFrameBuilder(enc *Encoder, ledCount, order, resetBytes int) (*FrameBuilder, error) {
	if ledCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrLedCount, ledCount)
	}
	channels, err := Channels(order)
	if err != nil {
		return nil, err
	}
	if resetBytes == 0 {
		resetBytes = DefaultResetBytes(enc.ClockHz())
	}
	if resetBytes < 0 {
		return nil, fmt.Errorf("%w: negative reset region (%d bytes)", ErrTiming, resetBytes)
	}
	return &FrameBuilder{
		enc:        enc,
		ledCount:   ledCount,
		order:      offsets[order],
		channels:   channels,
		resetBytes: resetBytes,
	}, nil
}

// FrameLen returns the fixed length of every frame this builder
// produces.
func (fb *FrameBuilder) FrameLen() int {
	return 2*fb.resetBytes + fb.ledCount*fb.channels*fb.enc.EncodedLen()
}

// ResetBytes returns the size of each reset region.
func (fb *FrameBuilder) ResetBytes() int {
	return fb.resetBytes
}

// Channels returns the channels transmitted per pixel.
func (fb *FrameBuilder) Channels() int {
	return fb.channels
}

// Build returns a freshly allocated frame for pixels.
func (fb *FrameBuilder) Build(pixels []Color) ([]byte, error) {
	frame := make([]byte, fb.FrameLen())
	if err := fb.BuildInto(frame, pixels); err != nil {
		return nil, err
	}
	return frame, nil
}

// BuildInto writes the frame for pixels into frame, which must be
// exactly FrameLen bytes. A pixel slice of the wrong length is a
// configuration fault, not something to pad or truncate.
func (fb *FrameBuilder) BuildInto(frame []byte, pixels []Color) error {
	if len(pixels) != fb.ledCount {
		return fmt.Errorf("%w: got %d pixels, strip has %d", ErrFrameLength, len(pixels), fb.ledCount)
	}
	if len(frame) != fb.FrameLen() {
		return fmt.Errorf("%w: frame buffer is %d bytes, need %d", ErrFrameLength, len(frame), fb.FrameLen())
	}
	for i := 0; i < fb.resetBytes; i++ {
		frame[i] = 0
	}
	pos := fb.resetBytes
	encLen := fb.enc.EncodedLen()
	var wire [4]byte
	for _, p := range pixels {
		wire[fb.order[0]] = p.G
		wire[fb.order[1]] = p.R
		wire[fb.order[2]] = p.B
		if fb.channels == 4 {
			wire[fb.order[3]] = p.W
		}
		for c := 0; c < fb.channels; c++ {
			fb.enc.EncodeByte(frame[pos:pos+encLen], wire[c])
			pos += encLen
		}
	}
	for i := pos; i < len(frame); i++ {
		frame[i] = 0
	}
	return nil
}

// DecodeActive reverses a frame built by this builder back into
// pixels, for tests and diagnostics. Reset regions must be all zero.
func (fb *FrameBuilder) DecodeActive(frame []byte) ([]Color, error) {
	if len(frame) != fb.FrameLen() {
		return nil, fmt.Errorf("%w: frame is %d bytes, expected %d", ErrDecode, len(frame), fb.FrameLen())
	}
	for i := 0; i < fb.resetBytes; i++ {
		if frame[i] != 0 || frame[len(frame)-1-i] != 0 {
			return nil, fmt.Errorf("%w: reset region is not all zero", ErrDecode)
		}
	}
	active := frame[fb.resetBytes : len(frame)-fb.resetBytes]
	raw, err := fb.enc.Decode(active)
	if err != nil {
		return nil, err
	}
	pixels := make([]Color, fb.ledCount)
	for i := range pixels {
		wire := raw[i*fb.channels : (i+1)*fb.channels]
		pixels[i].G = wire[fb.order[0]]
		pixels[i].R = wire[fb.order[1]]
		pixels[i].B = wire[fb.order[2]]
		if fb.channels == 4 {
			pixels[i].W = wire[fb.order[3]]
		}
	}
	return pixels, nil
}
