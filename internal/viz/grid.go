// Package viz renders feature maps and convolution kernels as grayscale
// image grids, mirroring the classic matplotlib layout: square grid,
// shared normalization, a title line and a colorbar.
package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

const (
	titleHeight   = 24
	tilePad       = 2
	colorbarWidth = 44
	minTileEdge   = 56
)

// Grid lays the maps out in a dim x dim grid with dim = floor(sqrt(n)).
// Maps beyond dim^2 are not drawn. All tiles share one min-max
// normalization so their gray levels are comparable, like a figure-wide
// colormap.
func Grid(maps [][]float32, h, w int, title string) *image.RGBA {
	if len(maps) == 0 {
		panic("viz: no maps to draw")
	}
	dim := int(math.Sqrt(float64(len(maps))))
	if dim < 1 {
		dim = 1
	}

	lo, hi := rangeOf(maps, dim*dim)

	scale := 1
	if h < minTileEdge {
		scale = (minTileEdge + h - 1) / h
	}
	tileH, tileW := h*scale, w*scale

	gridW := dim*(tileW+tilePad) + tilePad
	gridH := dim*(tileH+tilePad) + tilePad
	img := image.NewRGBA(image.Rect(0, 0, gridW+colorbarWidth, titleHeight+gridH))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i := 0; i < dim*dim; i++ {
		row, col := i/dim, i%dim
		x0 := tilePad + col*(tileW+tilePad)
		y0 := titleHeight + tilePad + row*(tileH+tilePad)
		drawTile(img, maps[i], h, w, x0, y0, scale, lo, hi)
	}

	drawTitle(img, title)
	drawColorbar(img, gridW, titleHeight, gridH, lo, hi)
	return img
}

// FeatureMapGrid renders every channel of a single-image activation of
// shape (1, c, h, w) or (c, h, w).
func FeatureMapGrid(activation *tensor.RawTensor, title string) (*image.RGBA, error) {
	shape := activation.Shape()
	if shape.Rank() == 4 {
		if shape[0] != 1 {
			return nil, fmt.Errorf("viz: feature maps need a single image, got batch %d", shape[0])
		}
		shape = shape[1:]
	}
	if shape.Rank() != 3 {
		return nil, fmt.Errorf("viz: feature maps need (c, h, w) activations, got %v", activation.Shape())
	}
	c, h, w := shape[0], shape[1], shape[2]
	data := activation.AsFloat32()
	maps := make([][]float32, c)
	for i := range maps {
		maps[i] = data[i*h*w : (i+1)*h*w]
	}
	return Grid(maps, h, w, title), nil
}

// KernelGrid renders slice featureNum of a convolution weight of shape
// (outC, inC, kh, kw): one kh x kw tile per output channel.
func KernelGrid(kernel *tensor.RawTensor, featureNum int, title string) (*image.RGBA, error) {
	shape := kernel.Shape()
	if shape.Rank() != 4 {
		return nil, fmt.Errorf("viz: kernels need (outC, inC, kh, kw) weights, got %v", shape)
	}
	outC, inC, kh, kw := shape[0], shape[1], shape[2], shape[3]
	if featureNum < 0 || featureNum >= inC {
		return nil, fmt.Errorf("viz: filter %d out of range, kernel has %d input channels", featureNum, inC)
	}
	data := kernel.AsFloat32()
	maps := make([][]float32, outC)
	plane := kh * kw
	for oc := 0; oc < outC; oc++ {
		base := (oc*inC + featureNum) * plane
		maps[oc] = data[base : base+plane]
	}
	return Grid(maps, kh, kw, title), nil
}

func rangeOf(maps [][]float32, n int) (lo, hi float32) {
	if n > len(maps) {
		n = len(maps)
	}
	lo, hi = maps[0][0], maps[0][0]
	for _, m := range maps[:n] {
		for _, v := range m {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

func grayLevel(v, lo, hi float32) uint8 {
	if hi <= lo {
		return 0
	}
	return uint8(255 * (v - lo) / (hi - lo))
}

func drawTile(img *image.RGBA, m []float32, h, w, x0, y0, scale int, lo, hi float32) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := grayLevel(m[y*w+x], lo, hi)
			c := color.RGBA{g, g, g, 255}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetRGBA(x0+x*scale+dx, y0+y*scale+dy, c)
				}
			}
		}
	}
}

func drawTitle(img *image.RGBA, title string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(tilePad+2, 16),
	}
	d.DrawString(title)
}

func drawColorbar(img *image.RGBA, x0, y0, height int, lo, hi float32) {
	barX := x0 + 6
	barW := 10
	for y := 0; y < height; y++ {
		g := uint8(255 - 255*y/max(height-1, 1))
		c := color.RGBA{g, g, g, 255}
		for x := 0; x < barW; x++ {
			img.SetRGBA(barX+x, y0+y, c)
		}
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	d.Dot = fixed.P(barX+barW+2, y0+12)
	d.DrawString(fmt.Sprintf("%.1f", hi))
	d.Dot = fixed.P(barX+barW+2, y0+height-2)
	d.DrawString(fmt.Sprintf("%.1f", lo))
}
