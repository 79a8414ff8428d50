package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"textimg-service/internal/apperr"
)

// HexToRGBA parses "#RRGGBB" or "#RRGGBBAA"; the leading '#' is optional and
// a missing alpha channel means opaque.
func HexToRGBA(hex string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 && len(digits) != 8 {
		return color.NRGBA{}, apperr.Invalidf("parse color", "hex color %q must have 6 or 8 digits", hex)
	}

	var channels [4]uint8
	channels[3] = 0xff
	for i := 0; i < len(digits)/2; i++ {
		v, err := strconv.ParseUint(digits[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, apperr.Invalidf("parse color", "hex color %q: invalid digits %q", hex, digits[2*i:2*i+2])
		}
		channels[i] = uint8(v)
	}
	return color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}

// RGBAToHex formats c as "#RRGGBBAA", the form HexToRGBA reads back.
func RGBAToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
