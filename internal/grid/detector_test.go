package grid

import (
	"errors"
	"image/color"
	"testing"

	"github.com/ivlev/slideslicer/internal/slide"
)

func TestDetectWorkAreaBounds(t *testing.T) {
	// Content only in a patch of the coarsest level.
	level0 := fillNRGBA(400, 300, color.NRGBA{})
	level1 := fillNRGBA(200, 150, color.NRGBA{})
	for y := 30; y < 90; y++ {
		for x := 40; x < 160; x++ {
			level1.SetNRGBA(x, y, tissue)
		}
	}
	src, err := slide.NewMemorySource(level0, level1)
	if err != nil {
		t.Fatal(err)
	}

	area, overview, err := DetectWorkArea(src, 1)
	if err != nil {
		t.Fatalf("DetectWorkArea: %v", err)
	}
	if (area != Box{40, 30, 160, 90}) {
		t.Errorf("work area = %v, want (40,30)-(160,90)", area)
	}
	if b := overview.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("overview is %dx%d, want the full 200x150 preview level", b.Dx(), b.Dy())
	}
}

func TestDetectWorkAreaBlankSlide(t *testing.T) {
	src, err := slide.NewMemorySource(
		fillNRGBA(100, 100, color.NRGBA{}),
		fillNRGBA(50, 50, color.NRGBA{}),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = DetectWorkArea(src, 1)
	if !errors.Is(err, ErrBlankSlide) {
		t.Errorf("blank slide: err = %v, want ErrBlankSlide", err)
	}
}

func TestDetectWorkAreaZoomValidation(t *testing.T) {
	src, err := slide.NewMemorySource(fillNRGBA(64, 64, tissue))
	if err != nil {
		t.Fatal(err)
	}

	for _, zoom := range []int{0, -1, 2} {
		if _, _, err := DetectWorkArea(src, zoom); err == nil {
			t.Errorf("zoom %d on a 1-level pyramid should fail", zoom)
		} else if errors.Is(err, ErrBlankSlide) {
			t.Errorf("zoom %d: got ErrBlankSlide, want a range error", zoom)
		}
	}
}

func TestLuminanceBoundsSinglePixel(t *testing.T) {
	img := fillNRGBA(30, 30, color.NRGBA{})
	img.SetNRGBA(7, 21, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	area, ok := luminanceBounds(img)
	if !ok {
		t.Fatal("expected a bounding box")
	}
	if (area != Box{7, 21, 8, 22}) {
		t.Errorf("bounds = %v, want (7,21)-(8,22)", area)
	}
}
