package slide

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzSource exposes a single-page document (a slide scan exported to PDF or
// another MuPDF-readable format) as a level pyramid: level L is the page
// rendered at baseDPI / 2^L.
//
// fitz documents are not reentrant, so ReadRegion opens a private handle per
// call instead of sharing the long-lived one.
type FitzSource struct {
	path string
	doc  *fitz.Document
	dims [][2]int
	dpi  float64
}

// minFitzLevel stops the pyramid once the coarsest level would drop below
// this many pixels on its short side.
const minFitzLevel = 64

func NewFitzSource(path string, baseDPI float64) (*FitzSource, error) {
	if baseDPI <= 0 {
		baseDPI = 300
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open slide %s: %w", path, err)
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("slide %s has no pages", path)
	}
	rect, err := doc.Bound(0)
	if err != nil {
		doc.Close()
		return nil, fmt.Errorf("read bounds of %s: %w", path, err)
	}

	// Page bounds come back in points (1/72 inch).
	s := &FitzSource{path: path, doc: doc, dpi: baseDPI}
	w0 := int(float64(rect.Dx()) * baseDPI / 72.0)
	h0 := int(float64(rect.Dy()) * baseDPI / 72.0)
	for w, h := w0, h0; ; w, h = w/2, h/2 {
		s.dims = append(s.dims, [2]int{w, h})
		if w/2 < minFitzLevel || h/2 < minFitzLevel {
			break
		}
	}
	return s, nil
}

func (s *FitzSource) LevelCount() int { return len(s.dims) }

func (s *FitzSource) LevelDimensions(level int) (int, int) {
	return s.dims[level][0], s.dims[level][1]
}

func (s *FitzSource) BestLevelForDownsample(downsample float64) int {
	return bestLevel(s.dims, downsample)
}

func (s *FitzSource) ReadRegion(origin image.Point, level int, size image.Point) (*image.NRGBA, error) {
	if level < 0 || level >= len(s.dims) {
		return nil, fmt.Errorf("level %d out of range (%d levels)", level, len(s.dims))
	}

	doc, err := fitz.New(s.path)
	if err != nil {
		return nil, fmt.Errorf("reopen slide %s: %w", s.path, err)
	}
	defer doc.Close()

	page, err := doc.ImageDPI(0, s.dpi/float64(int(1)<<uint(level)))
	if err != nil {
		return nil, fmt.Errorf("render level %d of %s: %w", level, s.path, err)
	}
	return readRegion(page, scaleOrigin(origin, s.dims, level), size), nil
}

func (s *FitzSource) Close() error { return s.doc.Close() }
