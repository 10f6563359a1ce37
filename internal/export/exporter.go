// Package export writes content tiles out as full-resolution image files.
package export

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/slideslicer/internal/grid"
	"github.com/ivlev/slideslicer/internal/slide"
	"github.com/ivlev/slideslicer/internal/system"
)

// Options configure one slide's tile export.
type Options struct {
	Format  string
	Width   int
	Height  int
	Workers int // 0 means one worker per logical CPU
}

// TileError pairs a failed tile with its cause. A failed tile never aborts
// its siblings; all failures are collected into the Result.
type TileError struct {
	Tile grid.Tile
	Err  error
}

func (e TileError) Error() string {
	return fmt.Sprintf("tile %d: %v", e.Tile.SequenceNumber, e.Err)
}

// Result summarizes one slide's export run.
type Result struct {
	Dir      string
	Exported int
	Failures []TileError
}

// FolderName builds the per-slide export directory name.
func FolderName(slideFolder string, opts Options) string {
	return fmt.Sprintf("%s_%s_%dx%d", slideFolder, opts.Format, opts.Width, opts.Height)
}

// ExportTiles writes every content tile concurrently through a bounded
// worker pool. The slide source is shared across workers, which is safe
// because Source.ReadRegion is required to be reentrant; tiles write to
// distinct files, so the only shared mutable state is the result tally.
func ExportTiles(src slide.Source, tiles []grid.Tile, slideFolder, outDir string, opts Options) (*Result, error) {
	dir := filepath.Join(outDir, FolderName(slideFolder, opts))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = system.WorkerCount()
	}

	res := &Result{Dir: dir}
	var mu sync.Mutex
	level := src.BestLevelForDownsample(1.0)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, t := range tiles {
		if !t.IsContent {
			continue
		}
		t := t
		g.Go(func() error {
			path, err := exportTile(src, t, level, dir, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, TileError{Tile: t, Err: err})
				log.Printf("[!] Tile %d export failed: %v", t.SequenceNumber, err)
				return nil
			}
			res.Exported++
			fmt.Printf("%s\t\t - saved\n", path)
			log.Printf("%s\t\t - saved", path)
			return nil
		})
	}
	g.Wait()
	return res, nil
}

func exportTile(src slide.Source, t grid.Tile, level int, dir string, opts Options) (string, error) {
	img, err := src.ReadRegion(
		image.Pt(t.FullRes.X0, t.FullRes.Y0),
		level,
		image.Pt(t.FullRes.Width(), t.FullRes.Height()),
	)
	if err != nil {
		return "", fmt.Errorf("read region %s: %w", t.FullRes, err)
	}

	name := fmt.Sprintf("tile_%d_res_%dx%d.%s", t.SequenceNumber, opts.Width, opts.Height, opts.Format)
	path := filepath.Join(dir, name)
	if err := saveTile(img, path, opts.Format); err != nil {
		return "", err
	}
	return path, nil
}
