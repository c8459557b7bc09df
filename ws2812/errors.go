package ws2812

import "errors"

var (
	// ErrLedCount reports an LED count that can't describe a strip.
	ErrLedCount = errors.New("ws2812: invalid LED count")
	// ErrChannelOrder reports an unknown color channel order.
	ErrChannelOrder = errors.New("ws2812: unsupported channel order")
	// ErrTiming reports a clock rate whose realizable pulse widths fall
	// outside the protocol's tolerance windows. Detected when the
	// encoder is built, never during a render.
	ErrTiming = errors.New("ws2812: clock rate cannot meet protocol timing")
	// ErrPixelRange reports a pixel index outside [0, LedCount).
	ErrPixelRange = errors.New("ws2812: pixel index out of range")
	// ErrFrameLength reports a pixel buffer whose length doesn't match
	// the configured LED count.
	ErrFrameLength = errors.New("ws2812: pixel buffer length mismatch")
	// ErrDecode reports frame bytes that don't map back to any channel
	// value through the encoder's table.
	ErrDecode = errors.New("ws2812: frame does not decode")
)
