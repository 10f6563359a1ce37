package slide

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeLevel(t *testing.T, dir string, level int, img image.Image) {
	t.Helper()
	path := filepath.Join(dir, "level_"+string(rune('0'+level))+".png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writePyramid(t *testing.T, dir string, w, h, levels int, c color.NRGBA) {
	t.Helper()
	for l := 0; l < levels; l++ {
		writeLevel(t, dir, l, solid(w>>uint(l), h>>uint(l), c))
	}
}

func TestPyramidSource(t *testing.T) {
	dir := t.TempDir()
	writePyramid(t, dir, 128, 96, 3, red)

	src, err := NewPyramidSource(dir)
	if err != nil {
		t.Fatalf("NewPyramidSource: %v", err)
	}
	defer src.Close()

	if src.LevelCount() != 3 {
		t.Fatalf("level count = %d, want 3", src.LevelCount())
	}
	w, h := src.LevelDimensions(2)
	if w != 32 || h != 24 {
		t.Errorf("level 2 = %dx%d, want 32x24", w, h)
	}

	region, err := src.ReadRegion(image.Pt(64, 48), 1, image.Pt(8, 8))
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	got := region.NRGBAAt(0, 0)
	if got.A != 255 || got.R != red.R {
		t.Errorf("region pixel = %v, want %v", got, red)
	}
}

func TestPyramidSourceMissingLevels(t *testing.T) {
	if _, err := NewPyramidSource(t.TempDir()); err == nil {
		t.Error("empty directory should not open as a pyramid")
	}
}

func TestPyramidSourceConcurrentDecode(t *testing.T) {
	dir := t.TempDir()
	writePyramid(t, dir, 64, 64, 2, red)

	src, err := NewPyramidSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	// All goroutines race on the first decode of both levels.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := src.ReadRegion(image.Point{}, i%2, image.Pt(16, 16)); err != nil {
				t.Errorf("read %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestFindSlides(t *testing.T) {
	root := t.TempDir()

	// A pyramid directory.
	pyrDir := filepath.Join(root, "case A", "scan")
	if err := os.MkdirAll(pyrDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeLevel(t, pyrDir, 0, solid(16, 16, red))

	// A document slide.
	docDir := filepath.Join(root, "case B")
	if err := os.MkdirAll(docDir, 0755); err != nil {
		t.Fatal(err)
	}
	doc := filepath.Join(docDir, "scan.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	// Noise that must be ignored.
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := FindSlides(root, []string{".pdf"})
	if err != nil {
		t.Fatalf("FindSlides: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("found %d slides, want 2: %v", len(found), found)
	}
	if found[0] != pyrDir || found[1] != doc {
		t.Errorf("found %v, want [%s %s]", found, pyrDir, doc)
	}
}
