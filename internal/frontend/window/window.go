// Package window implements a desktop window frontend based on ebiten.
package window

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/chip8emu/internal/chip8"
)

// keyMap maps the hexadecimal keypad to the left side of a QWERTY keyboard:
//
//	1 2 3 C    1 2 3 4
//	4 5 6 D    Q W E R
//	7 8 9 E    A S D F
//	A 0 B F    Z X C V
var keyMap = [chip8.KeyCount]ebiten.Key{
	0x0: ebiten.KeyX,
	0x1: ebiten.KeyDigit1,
	0x2: ebiten.KeyDigit2,
	0x3: ebiten.KeyDigit3,
	0x4: ebiten.KeyQ,
	0x5: ebiten.KeyW,
	0x6: ebiten.KeyE,
	0x7: ebiten.KeyA,
	0x8: ebiten.KeyS,
	0x9: ebiten.KeyD,
	0xA: ebiten.KeyZ,
	0xB: ebiten.KeyC,
	0xC: ebiten.KeyDigit4,
	0xD: ebiten.KeyR,
	0xE: ebiten.KeyF,
	0xF: ebiten.KeyV,
}

// Colors of set and unset pixels.
var (
	DefaultForeground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	DefaultBackground = color.RGBA{A: 0xFF}
)

// Window displays the framebuffer scaled up in a desktop window and reads
// the keypad from the keyboard. It drives the machine from the ebiten game
// loop, all methods are called on the game loop goroutine.
type Window struct {
	title      string
	scale      int
	foreground color.RGBA
	background color.RGBA

	ctx    context.Context
	step   func() error
	image  *ebiten.Image
	pixels []byte
	dirty  bool
}

// New returns a new window frontend.
func New(title string, scale int) *Window {
	w := &Window{
		title:      title,
		scale:      scale,
		foreground: DefaultForeground,
		background: DefaultBackground,
		pixels:     make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*4),
	}
	_ = w.Render(&chip8.Framebuffer{})
	return w
}

// Drive opens the window and runs the game loop until step returns an error,
// the context is canceled or the window is closed.
func (w *Window) Drive(ctx context.Context, tickRate int, step func() error) error {
	w.ctx = ctx
	w.step = step

	ebiten.SetWindowSize(chip8.DisplayWidth*w.scale, chip8.DisplayHeight*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(tickRate)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// Poll returns the state of the mapped keyboard keys. Escape or closing the
// window requests to quit.
func (w *Window) Poll() (chip8.Keypad, bool) {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return chip8.Keypad{}, true
	}

	var keypad chip8.Keypad
	for i, key := range keyMap {
		keypad[i] = ebiten.IsKeyPressed(key)
	}
	return keypad, false
}

// Render converts the framebuffer to RGBA pixels that are shown on the next draw.
func (w *Window) Render(fb *chip8.Framebuffer) error {
	writePixels(w.pixels, fb, w.foreground, w.background)
	w.dirty = true
	return nil
}

// Update implements ebiten.Game and executes one machine tick.
func (w *Window) Update() error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	return w.step()
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
		w.dirty = true
	}
	if w.dirty {
		w.image.WritePixels(w.pixels)
		w.dirty = false
	}
	screen.DrawImage(w.image, nil)
}

// Layout implements ebiten.Game, the window content is scaled by ebiten.
func (w *Window) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth, chip8.DisplayHeight
}

// writePixels writes the framebuffer as RGBA pixels to dst.
func writePixels(dst []byte, fb *chip8.Framebuffer, foreground, background color.RGBA) {
	i := 0
	for _, row := range fb {
		for _, pixel := range row {
			c := background
			if pixel != 0 {
				c = foreground
			}
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
			i += 4
		}
	}
}
