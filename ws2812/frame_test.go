package ws2812

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuilder(t *testing.T, ledCount, order, resetBytes int) (*Encoder, *FrameBuilder) {
	t.Helper()
	enc, err := NewEncoder(2400000)
	require.NoError(t, err)
	fb, err := NewFrameBuilder(enc, ledCount, order, resetBytes)
	require.NoError(t, err)
	return enc, fb
}

func TestFrameLen(t *testing.T) {
	tests := []struct {
		ledCount   int
		order      int
		resetBytes int
		want       int
	}{
		// 3 encoded bytes per channel at 2.4MHz, 90 reset bytes per
		// region by default.
		{1, GRB, 0, 2*90 + 1*3*3},
		{24, GRB, 0, 2*90 + 24*3*3},
		{24, GRB, 42, 2*42 + 24*3*3},
		{24, GRBW, 0, 2*90 + 24*4*3},
	}
	for _, test := range tests {
		_, fb := mustBuilder(t, test.ledCount, test.order, test.resetBytes)
		if got := fb.FrameLen(); got != test.want {
			t.Errorf("FrameLen(count=%d, order=%d, reset=%d) = %d, want %d",
				test.ledCount, test.order, test.resetBytes, got, test.want)
		}
		frame, err := fb.Build(make([]Color, test.ledCount))
		require.NoError(t, err)
		assert.Len(t, frame, test.want)
	}
}

func TestFrameBuilderRejectsBadConfig(t *testing.T) {
	enc, err := NewEncoder(2400000)
	require.NoError(t, err)

	_, err = NewFrameBuilder(enc, 0, GRB, 0)
	assert.ErrorIs(t, err, ErrLedCount)
	_, err = NewFrameBuilder(enc, -3, GRB, 0)
	assert.ErrorIs(t, err, ErrLedCount)
	_, err = NewFrameBuilder(enc, 8, 99, 0)
	assert.ErrorIs(t, err, ErrChannelOrder)
}

func TestBuildDeterministic(t *testing.T) {
	_, fb := mustBuilder(t, 8, GRB, 0)
	pixels := make([]Color, 8)
	for i := range pixels {
		pixels[i] = Color{R: uint8(i * 10), G: uint8(200 - i), B: uint8(i)}
	}
	a, err := fb.Build(pixels)
	require.NoError(t, err)
	b, err := fb.Build(pixels)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildLengthMismatch(t *testing.T) {
	_, fb := mustBuilder(t, 4, GRB, 0)
	_, err := fb.Build(make([]Color, 3))
	assert.ErrorIs(t, err, ErrFrameLength)
	_, err = fb.Build(make([]Color, 5))
	assert.ErrorIs(t, err, ErrFrameLength)

	err = fb.BuildInto(make([]byte, fb.FrameLen()-1), make([]Color, 4))
	assert.ErrorIs(t, err, ErrFrameLength)
}

func TestChannelOrderOnWire(t *testing.T) {
	p := Color{R: 1, G: 2, B: 3}
	tests := []struct {
		order int
		wire  []byte
	}{
		{GRB, []byte{2, 1, 3}},
		{RGB, []byte{1, 2, 3}},
		{BGR, []byte{3, 2, 1}},
		{BRG, []byte{3, 1, 2}},
	}
	for _, test := range tests {
		enc, fb := mustBuilder(t, 1, test.order, 4)
		frame, err := fb.Build([]Color{p})
		require.NoError(t, err)

		var want []byte
		want = append(want, make([]byte, 4)...)
		for _, v := range test.wire {
			want = enc.AppendByte(want, v)
		}
		want = append(want, make([]byte, 4)...)
		assert.Equal(t, want, frame, "order %d", test.order)
	}
}

func TestDecodeActiveRoundTrip(t *testing.T) {
	for _, order := range []int{GRB, RGB, GRBW, RGBW} {
		_, fb := mustBuilder(t, 5, order, 0)
		pixels := []Color{
			{R: 255, G: 128, B: 1, W: 7},
			{},
			{R: 10, G: 20, B: 30, W: 40},
			{R: 255, G: 255, B: 255, W: 255},
			{B: 200},
		}
		if fb.Channels() == 3 {
			// W never reaches the wire for 3-channel orders.
			for i := range pixels {
				pixels[i].W = 0
			}
		}
		frame, err := fb.Build(pixels)
		require.NoError(t, err)
		got, err := fb.DecodeActive(frame)
		require.NoError(t, err)
		assert.Equal(t, pixels, got, "order %d", order)
	}
}

func TestResetRegionsAreZero(t *testing.T) {
	_, fb := mustBuilder(t, 3, GRB, 16)
	pixels := []Color{{R: 255, G: 255, B: 255}, {R: 255}, {G: 255}}
	frame, err := fb.Build(pixels)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		assert.Zero(t, frame[i], "leading reset byte %d", i)
		assert.Zero(t, frame[len(frame)-1-i], "trailing reset byte %d", i)
	}
}
