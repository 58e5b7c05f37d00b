package match

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	gridSize  = 8
	histBins  = 4 // per channel
	colorDims = gridSize*gridSize*3 + histBins*histBins*histBins
)

// ColorEmbedder is a local, deterministic embedder: a downscaled colour layout
// followed by a coarse RGB histogram. It needs no network and is good enough to
// separate obviously different items; CaptionEmbedder is more discriminating.
type ColorEmbedder struct{}

func (ColorEmbedder) Embed(ctx context.Context, img Image) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	grid := image.NewRGBA(image.Rect(0, 0, gridSize, gridSize))
	draw.ApproxBiLinear.Scale(grid, grid.Bounds(), src, src.Bounds(), draw.Src, nil)

	vec := make([]float32, colorDims)
	i := 0
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			o := grid.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				vec[i] = float32(grid.Pix[o+c]) / 255
				i++
			}
		}
	}

	hist := vec[i:]
	b := src.Bounds()
	step := 1
	if n := b.Dx() * b.Dy(); n > 256*256 {
		step = 2
	}
	var total float32
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := src.At(x, y).RGBA()
			bin := int(r>>14)*histBins*histBins + int(g>>14)*histBins + int(bl>>14)
			hist[bin]++
			total++
		}
	}
	if total > 0 {
		for j := range hist {
			hist[j] /= total
		}
	}
	return vec, nil
}
