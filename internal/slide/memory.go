package slide

import (
	"fmt"
	"image"
)

// MemorySource serves a pyramid built from in-memory images, level 0 first.
// Decoded images are never mutated, so concurrent region reads are safe.
type MemorySource struct {
	levels []image.Image
}

func NewMemorySource(levels ...image.Image) (*MemorySource, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("memory source needs at least one level")
	}
	return &MemorySource{levels: levels}, nil
}

func (s *MemorySource) LevelCount() int { return len(s.levels) }

func (s *MemorySource) LevelDimensions(level int) (int, int) {
	b := s.levels[level].Bounds()
	return b.Dx(), b.Dy()
}

func (s *MemorySource) BestLevelForDownsample(downsample float64) int {
	return bestLevel(s.dims(), downsample)
}

func (s *MemorySource) ReadRegion(origin image.Point, level int, size image.Point) (*image.NRGBA, error) {
	if level < 0 || level >= len(s.levels) {
		return nil, fmt.Errorf("level %d out of range (%d levels)", level, len(s.levels))
	}
	min := scaleOrigin(origin, s.dims(), level)
	return readRegion(s.levels[level], min, size), nil
}

func (s *MemorySource) Close() error { return nil }

func (s *MemorySource) dims() [][2]int {
	dims := make([][2]int, len(s.levels))
	for i, img := range s.levels {
		b := img.Bounds()
		dims[i] = [2]int{b.Dx(), b.Dy()}
	}
	return dims
}

// bestLevel picks the deepest level whose downsample does not exceed the
// requested factor; requests below 1.0 always resolve to level 0.
func bestLevel(dims [][2]int, downsample float64) int {
	best := 0
	for l := range dims {
		if levelDownsample(dims, l) <= downsample+1e-9 {
			best = l
		} else {
			break
		}
	}
	return best
}

func levelDownsample(dims [][2]int, level int) float64 {
	return float64(dims[0][0]) / float64(dims[level][0])
}

// scaleOrigin maps a level-0 origin into a level's own coordinates.
func scaleOrigin(origin image.Point, dims [][2]int, level int) image.Point {
	if level == 0 {
		return origin
	}
	return image.Point{
		X: origin.X * dims[level][0] / dims[0][0],
		Y: origin.Y * dims[level][1] / dims[0][1],
	}
}
