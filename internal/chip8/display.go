package chip8

import "strings"

// Framebuffer is the 64x32 monochrome display, indexed [y][x].
// Every cell holds either 0 or 1.
type Framebuffer [DisplayHeight][DisplayWidth]uint8

// Pixel returns the value of the pixel at the given coordinates.
func (f *Framebuffer) Pixel(x, y int) uint8 {
	return f[y][x]
}

// Clear turns all pixels off.
func (f *Framebuffer) Clear() {
	*f = Framebuffer{}
}

// xor flips the pixel at the given coordinates if bit is set and returns 1
// if this turned a set pixel off.
func (f *Framebuffer) xor(x, y int, bit uint8) uint8 {
	old := f[y][x]
	f[y][x] = old ^ bit
	return old & bit
}

// String renders the framebuffer as text, one line per row with '#' for set
// and '.' for unset pixels.
func (f *Framebuffer) String() string {
	var sb strings.Builder
	sb.Grow(DisplayHeight * (DisplayWidth + 1))
	for _, row := range f {
		for _, pixel := range row {
			if pixel != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
