// Package pipeline drives per-slide processing: work-area detection, grid
// planning, classification, overview rendering, tile export and reporting.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/slideslicer/internal/config"
	"github.com/ivlev/slideslicer/internal/export"
	"github.com/ivlev/slideslicer/internal/grid"
	"github.com/ivlev/slideslicer/internal/gridmap"
	"github.com/ivlev/slideslicer/internal/report"
	"github.com/ivlev/slideslicer/internal/slide"
)

type Pipeline struct {
	cfg      config.Config
	renderer *gridmap.Renderer
	report   *report.Aggregator
	outDir   string
}

// New prepares the output directory and the overview renderer. A missing
// annotation font is fatal here: no slide could be rendered anyway.
func New(cfg config.Config) (*Pipeline, error) {
	if cfg.DataFolder == "" {
		return nil, errors.New("data folder is not set")
	}
	absData, err := filepath.Abs(cfg.DataFolder)
	if err != nil {
		return nil, err
	}
	outDir := filepath.Join(filepath.Dir(absData), "sliced")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	fnt, err := gridmap.LoadAnnotationFont(cfg.FontPaths)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg: cfg,
		renderer: &gridmap.Renderer{
			Font:       fnt,
			TileWidth:  cfg.ImageWidth,
			TileHeight: cfg.ImageHeight,
			StampQR:    cfg.MapQR,
		},
		report: report.NewAggregator(filepath.Join(outDir, "report.xlsx")),
		outDir: outDir,
	}, nil
}

// OutDir is where all artifacts of this run land.
func (p *Pipeline) OutDir() string { return p.outDir }

// Run processes every discovered slide strictly in sequence. A failing
// slide is logged and skipped; the run always continues with the next one.
func (p *Pipeline) Run() error {
	slides, err := slide.FindSlides(p.cfg.DataFolder, p.cfg.SlideExtensions)
	if err != nil {
		return fmt.Errorf("scan %s: %w", p.cfg.DataFolder, err)
	}
	if len(slides) == 0 {
		fmt.Printf("[!] No slides found under %s\n", p.cfg.DataFolder)
		return nil
	}

	for _, path := range slides {
		if err := p.ProcessSlide(path); err != nil {
			log.Printf("[!] Skipping %s: %v", path, err)
			fmt.Printf("[!] Skipping %s: %v\n", path, err)
		}
	}
	return nil
}

// ProcessSlide runs the full per-slide sequence. Planning, classification
// and map rendering finish before the concurrent export phase starts, so
// the tile records are immutable by the time workers share them.
func (p *Pipeline) ProcessSlide(path string) error {
	start := time.Now()

	src, err := slide.Open(path, p.cfg.BaseDPI)
	if err != nil {
		return fmt.Errorf("open slide: %w", err)
	}
	defer src.Close()

	levels := src.LevelCount()
	log.Printf("----------------------------------------------------------------------")
	log.Printf("File: %s", path)
	log.Printf("Cutting image width: %d, cutting image height: %d", p.cfg.ImageWidth, p.cfg.ImageHeight)
	log.Printf("Number of levels: %d", levels)
	fmt.Println(path)
	fmt.Printf("Number of levels: %d\n", levels)

	workArea, overview, err := grid.DetectWorkArea(src, p.cfg.PreviewZoom)
	if err != nil {
		return fmt.Errorf("detect work area: %w", err)
	}

	maxZoom := slide.MaxZoom(src)
	planner := grid.Planner{TileWidth: p.cfg.ImageWidth, TileHeight: p.cfg.ImageHeight}
	full := workArea.ScalePow2(maxZoom - p.cfg.PreviewZoom)
	cols, rows := planner.GridSize(full)
	log.Printf("Max zoom (zoom = %d) work area: %s", maxZoom, full)
	log.Printf("Images grid number: %d x %d, total %d images", cols, rows, cols*rows)
	fmt.Printf("Max zoom (zoom = %d) work area: %s\n", maxZoom, full)
	fmt.Printf("Images grid number: %d x %d, total %d images\n", cols, rows, cols*rows)

	planned, err := planner.Plan(src, workArea, p.cfg.PreviewZoom, maxZoom)
	if err != nil {
		return fmt.Errorf("plan grid: %w", err)
	}
	grid.Classify(planned, p.cfg.Thresholds)
	tiles := grid.Tiles(planned)
	content := grid.AssignSequenceNumbers(tiles)
	log.Printf("Total %d non empty tiles", content)
	fmt.Printf("Total %d non empty tiles\n", content)

	folder := slide.FolderName(path)
	manifestPath, err := p.renderer.Render(overview, tiles, path, folder, p.outDir)
	if err != nil {
		return fmt.Errorf("render grid map: %w", err)
	}
	log.Printf("Time for the map drawing: %.2f s.", time.Since(start).Seconds())

	opts := export.Options{
		Format:  p.cfg.ExportFormat,
		Width:   p.cfg.ImageWidth,
		Height:  p.cfg.ImageHeight,
		Workers: p.cfg.Workers,
	}
	if p.cfg.SaveCutImages {
		res, err := export.ExportTiles(src, tiles, folder, p.outDir, opts)
		if err != nil {
			return fmt.Errorf("export tiles: %w", err)
		}
		if n := len(res.Failures); n > 0 {
			log.Printf("[!] %d of %d tiles failed to export", n, content)
			fmt.Printf("[!] %d of %d tiles failed to export\n", n, content)
		}
		log.Printf("Time for the cut image export: %.2f s.", time.Since(start).Seconds())
	}

	outFolder := export.FolderName(folder, opts)
	row := report.Row{
		SourceFile:   path,
		ManifestPath: manifestPath,
		OutputFolder: outFolder,
		ContentTiles: content,
		ExportedSize: report.ExportedSize(filepath.Join(p.outDir, outFolder)),
	}
	if err := p.report.Append(row); err != nil {
		return fmt.Errorf("update report: %w", err)
	}

	fmt.Printf("Total time: %.2f s.\n", time.Since(start).Seconds())
	return nil
}
