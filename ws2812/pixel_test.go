package ws2812

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannels(t *testing.T) {
	for name, order := range StringOrders {
		got, err := Channels(order)
		assert.NoError(t, err, name)
		if len(name) == 4 {
			assert.Equal(t, 4, got, name)
		} else {
			assert.Equal(t, 3, got, name)
		}
	}
	_, err := Channels(1000)
	assert.ErrorIs(t, err, ErrChannelOrder)
}

func TestColorString(t *testing.T) {
	c := Color{R: 0xAB, G: 0x01, B: 0xFF, W: 0x10}
	assert.Equal(t, "ab01ff10", c.String())
}
