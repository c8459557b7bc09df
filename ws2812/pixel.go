package ws2812

import "fmt"

// Channel orders. The value names give the on-wire sequence of color
// components per pixel; which one applies is a property of the chip
// variant, not something that can be probed.
const (
	GRB = iota
	BRG
	BGR
	GBR
	RGB
	RBG
	GRBW
	RGBW
)

var StringOrders = map[string]int{
	"GRB":  GRB,
	"BRG":  BRG,
	"BGR":  BGR,
	"GBR":  GBR,
	"RGB":  RGB,
	"RBG":  RBG,
	"GRBW": GRBW,
	"RGBW": RGBW,
}

// offsets maps an order to the wire position of the G, R, B and W
// components, -1 meaning the component isn't transmitted.
var offsets = map[int][]int{
	GRB:  {0, 1, 2, -1},
	BRG:  {2, 1, 0, -1},
	BGR:  {1, 2, 0, -1},
	GBR:  {0, 2, 1, -1},
	RGB:  {1, 0, 2, -1},
	RBG:  {2, 0, 1, -1},
	GRBW: {0, 1, 2, 3},
	RGBW: {1, 0, 2, 3},
}

// Channels returns the number of color channels transmitted per pixel
// for the given order, or an error for an unknown order.
func Channels(order int) (int, error) {
	o, ok := offsets[order]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrChannelOrder, order)
	}
	if o[3] == -1 {
		return 3, nil
	}
	return 4, nil
}

// Color is one pixel's channel values. W is ignored by 3-channel
// orders.
type Color struct {
	R, G, B, W uint8
}

func (c Color) String() string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.W)
}
