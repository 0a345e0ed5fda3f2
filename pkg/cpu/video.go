package cpu

import (
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// GetFramebufferRGBA decodes the screen memory into a 512×256 RGBA8888
// byte slice (length 512*256*4). A set bit is a black pixel on the
// white background, with the low bit of each word leftmost.
func (c *Computer) GetFramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < ScreenWords; i++ {
		word := c.RAM[int(ScreenBase)+i]
		for bit := 0; bit < 16; bit++ {
			v := byte(0xFF)
			if word>>bit&1 == 1 {
				v = 0x00
			}
			p := (i*16 + bit) * 4
			pixels[p+0] = v
			pixels[p+1] = v
			pixels[p+2] = v
			pixels[p+3] = 0xFF
		}
	}
	return pixels
}

// GetFramebufferImage returns the screen as an *image.RGBA.
func (c *Computer) GetFramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.GetFramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// SaveScreenshot encodes the screen as a PNG and writes it to
// filename. A scale above 1 enlarges with nearest-neighbour sampling
// so the pixels stay crisp.
func (c *Computer) SaveScreenshot(filename string, scale int) error {
	img := c.GetFramebufferImage()
	if scale > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, ScreenWidth*scale, ScreenHeight*scale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = scaled
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
