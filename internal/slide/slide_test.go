package slide

import (
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var red = color.NRGBA{R: 200, A: 255}

func TestMemorySourceLevels(t *testing.T) {
	src, err := NewMemorySource(
		solid(800, 600, red),
		solid(400, 300, red),
		solid(200, 150, red),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.LevelCount() != 3 {
		t.Fatalf("level count = %d, want 3", src.LevelCount())
	}
	w, h := src.LevelDimensions(1)
	if w != 400 || h != 300 {
		t.Errorf("level 1 = %dx%d, want 400x300", w, h)
	}

	if BestResolutionLevel(src) != 0 {
		t.Errorf("best resolution level = %d, want 0", BestResolutionLevel(src))
	}
	if MaxZoom(src) != 3 {
		t.Errorf("max zoom = %d, want 3", MaxZoom(src))
	}
}

func TestBestLevelForDownsample(t *testing.T) {
	src, err := NewMemorySource(
		solid(800, 600, red),
		solid(400, 300, red),
		solid(200, 150, red),
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		downsample float64
		want       int
	}{
		{0.5, 0},
		{1.0, 0},
		{1.9, 0},
		{2.0, 1},
		{3.5, 1},
		{4.0, 2},
		{64.0, 2},
	}
	for _, tt := range tests {
		if got := src.BestLevelForDownsample(tt.downsample); got != tt.want {
			t.Errorf("BestLevelForDownsample(%v) = %d, want %d", tt.downsample, got, tt.want)
		}
	}
}

func TestReadRegionScalesOrigin(t *testing.T) {
	level0 := solid(400, 400, color.NRGBA{})
	level1 := solid(200, 200, color.NRGBA{})
	// One marked pixel at level-1 (50,60), i.e. level-0 (100,120).
	level1.SetNRGBA(50, 60, red)

	src, err := NewMemorySource(level0, level1)
	if err != nil {
		t.Fatal(err)
	}

	region, err := src.ReadRegion(image.Pt(100, 120), 1, image.Pt(10, 10))
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if got := region.NRGBAAt(0, 0); got != red {
		t.Errorf("origin pixel = %v, want %v", got, red)
	}
}

func TestReadRegionPadsOutsideExtent(t *testing.T) {
	src, err := NewMemorySource(solid(100, 100, red))
	if err != nil {
		t.Fatal(err)
	}

	region, err := src.ReadRegion(image.Pt(90, 90), 0, image.Pt(20, 20))
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if got := region.NRGBAAt(5, 5); got != red {
		t.Errorf("inside pixel = %v, want %v", got, red)
	}
	if got := region.NRGBAAt(15, 15); got.A != 0 {
		t.Errorf("padding pixel = %v, want transparent", got)
	}
}

func TestReadRegionConcurrent(t *testing.T) {
	src, err := NewMemorySource(solid(256, 256, red), solid(128, 128, red))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			region, err := src.ReadRegion(image.Pt((i%8)*32, (i/8)*32), i%2, image.Pt(16, 16))
			if err != nil {
				t.Errorf("concurrent read %d: %v", i, err)
				return
			}
			if region.Bounds().Dx() != 16 {
				t.Errorf("concurrent read %d: bad region size", i)
			}
		}(i)
	}
	wg.Wait()
}

func TestFolderName(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(dir, "missing folder", "slide.pdf"), "missing_folder"},
		{filepath.Join("some", "Patient 12 B", "scan.pdf"), "Patient_12_B"},
	}
	for _, tt := range tests {
		if got := FolderName(tt.path); got != tt.want {
			t.Errorf("FolderName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	// A slide directory names itself.
	if got := FolderName(dir); got != filepath.Base(dir) {
		t.Errorf("FolderName(dir) = %q, want %q", got, filepath.Base(dir))
	}
}
