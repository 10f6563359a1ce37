package slide

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// levelExtensions lists the file types a pyramid directory may store its
// levels in, in lookup order.
var levelExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"}

// PyramidSource reads a slide stored as one image file per level:
// level_0.png holds the full resolution, level_1.png half of it, and so on.
// Levels are decoded lazily and cached; the cached images are immutable, so
// concurrent region reads only contend on the cache lock.
type PyramidSource struct {
	dir   string
	paths []string
	dims  [][2]int

	mu     sync.RWMutex
	levels map[int]image.Image
}

func NewPyramidSource(dir string) (*PyramidSource, error) {
	s := &PyramidSource{dir: dir, levels: make(map[int]image.Image)}
	for level := 0; ; level++ {
		path, ok := levelPath(dir, level)
		if !ok {
			break
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open level %d of %s: %w", level, dir, err)
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode level %d of %s: %w", level, dir, err)
		}
		s.paths = append(s.paths, path)
		s.dims = append(s.dims, [2]int{cfg.Width, cfg.Height})
	}
	if len(s.paths) == 0 {
		return nil, fmt.Errorf("no level_0 image in %s", dir)
	}
	return s, nil
}

func levelPath(dir string, level int) (string, bool) {
	for _, ext := range levelExtensions {
		path := filepath.Join(dir, fmt.Sprintf("level_%d%s", level, ext))
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func (s *PyramidSource) LevelCount() int { return len(s.paths) }

func (s *PyramidSource) LevelDimensions(level int) (int, int) {
	return s.dims[level][0], s.dims[level][1]
}

func (s *PyramidSource) BestLevelForDownsample(downsample float64) int {
	return bestLevel(s.dims, downsample)
}

func (s *PyramidSource) ReadRegion(origin image.Point, level int, size image.Point) (*image.NRGBA, error) {
	if level < 0 || level >= len(s.paths) {
		return nil, fmt.Errorf("level %d out of range (%d levels)", level, len(s.paths))
	}
	img, err := s.levelImage(level)
	if err != nil {
		return nil, err
	}
	return readRegion(img, scaleOrigin(origin, s.dims, level), size), nil
}

func (s *PyramidSource) levelImage(level int) (image.Image, error) {
	s.mu.RLock()
	img, ok := s.levels[level]
	s.mu.RUnlock()
	if ok {
		return img, nil
	}

	f, err := os.Open(s.paths[level])
	if err != nil {
		return nil, fmt.Errorf("open level %d: %w", level, err)
	}
	defer f.Close()
	img, _, err = image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode level %d: %w", level, err)
	}

	s.mu.Lock()
	// A racing reader may have decoded the same level; keep the first copy.
	if cached, ok := s.levels[level]; ok {
		img = cached
	} else {
		s.levels[level] = img
	}
	s.mu.Unlock()
	return img, nil
}

func (s *PyramidSource) Close() error {
	s.mu.Lock()
	s.levels = make(map[int]image.Image)
	s.mu.Unlock()
	return nil
}
