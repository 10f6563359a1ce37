package grid

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ivlev/slideslicer/internal/slide"
)

// ErrBlankSlide reports that a slide's preview level holds no detectable
// content. Callers skip the slide and continue with the next one.
var ErrBlankSlide = errors.New("slide has no detectable content")

// DetectWorkArea reads the whole preview level (zoom steps below the
// coarsest end of the pyramid) and returns the bounding box of non-zero
// luminance in that level's coordinates, together with the preview image
// itself for later overview rendering.
func DetectWorkArea(src slide.Source, zoom int) (Box, *image.NRGBA, error) {
	levels := src.LevelCount()
	level := levels - zoom
	if level < 0 || level >= levels {
		return Box{}, nil, fmt.Errorf("preview zoom %d outside pyramid of %d levels", zoom, levels)
	}

	w, h := src.LevelDimensions(level)
	overview, err := src.ReadRegion(image.Point{}, level, image.Pt(w, h))
	if err != nil {
		return Box{}, nil, fmt.Errorf("read preview level %d: %w", level, err)
	}

	area, ok := luminanceBounds(overview)
	if !ok {
		return Box{}, nil, ErrBlankSlide
	}
	return area, overview, nil
}

// luminanceBounds computes the minimal box enclosing all pixels whose
// grayscale value is non-zero. Fully transparent scanner padding decodes as
// (0,0,0,0) and therefore never extends the box.
func luminanceBounds(img *image.NRGBA) (Box, bool) {
	gray := effect.Grayscale(img)
	b := gray.Bounds()

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride : (y-b.Min.Y)*gray.Stride+(b.Max.X-b.Min.X)*4]
		for x := 0; x < len(row); x += 4 {
			if row[x] == 0 {
				continue
			}
			px := b.Min.X + x/4
			if px < minX {
				minX = px
			}
			if px > maxX {
				maxX = px
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return Box{}, false
	}
	return Box{X0: minX, Y0: minY, X1: maxX + 1, Y1: maxY + 1}, true
}
