// Package report maintains the cumulative per-slide processing table.
package report

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Row is one processed slide's summary.
type Row struct {
	SourceFile   string
	ManifestPath string
	OutputFolder string
	ContentTiles int
	ExportedSize string
}

var columns = []string{"source_file", "manifest_path", "output_folder_name", "content_tile_count", "exported_size"}

// Aggregator accumulates rows and rewrites the whole workbook after every
// append, so a crash mid-run never loses completed slides.
type Aggregator struct {
	path string
	rows []Row
}

func NewAggregator(path string) *Aggregator {
	return &Aggregator{path: path}
}

func (a *Aggregator) Path() string { return a.path }
func (a *Aggregator) Rows() []Row  { return a.rows }

// Append records one slide and flushes the table to disk immediately.
func (a *Aggregator) Append(row Row) error {
	a.rows = append(a.rows, row)
	return a.Flush()
}

// Flush rewrites the complete table, header plus all rows so far.
func (a *Aggregator) Flush() error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write report header: %w", err)
		}
	}
	for r, row := range a.rows {
		values := []interface{}{row.SourceFile, row.ManifestPath, row.OutputFolder, row.ContentTiles, row.ExportedSize}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write report row %d: %w", r+1, err)
			}
		}
	}
	if err := f.SaveAs(a.path); err != nil {
		return fmt.Errorf("save report %s: %w", a.path, err)
	}
	return nil
}

// ExportedSize reports a directory's recursive size in whole megabytes, or
// the "-" sentinel when the directory does not exist (export disabled or
// nothing written).
func ExportedSize(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "-"
	}
	var total int64
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += fi.Size()
		}
		return nil
	})
	return fmt.Sprintf("%.0f Mb", float64(total)/(1024*1024))
}
