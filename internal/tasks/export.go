package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// ExportOpts contains configuration for per-category exports.
type ExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt
	OutputDir  string           // Base output directory (default: catalog_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4)
	ImageBase  string           // Image CDN base for markdown thumbnails
}

// CategoryExportResult is the outcome of exporting one category.
type CategoryExportResult struct {
	Key     models.CategoryKey `json:"key"`
	Title   string             `json:"title"`
	Count   int                `json:"count"`
	Files   []string           `json:"files"`
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
}

// ExportResult summarizes a call to [ExportPage].
type ExportResult struct {
	OutputDirectory   string                 `json:"output_directory"`
	Format            formatter.Format       `json:"format"`
	TotalCategories   int                    `json:"total_categories"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	Results           []CategoryExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

// ExportPage writes every category of page to its own file in opts.OutputDir.
//
// Categories are written by a small worker pool; a failed category does not stop the others.
// An export_manifest.json summarizing the outcome is written last.
func ExportPage(ctx context.Context, prog chan<- ProgressUpdate, page *models.CatalogPage, opts ExportOpts) (*ExportResult, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: no catalog page to export", shared.ErrInvalidInput)
	}
	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("catalog_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	rows := page.All()
	result := &ExportResult{
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format,
		TotalCategories: len(rows),
		Results:         make([]CategoryExportResult, 0, len(rows)),
	}

	jobs := make(chan models.Row, len(rows))
	results := make(chan CategoryExportResult, len(rows))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, results, opts)
	}

	for _, row := range rows {
		jobs <- row
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(rows), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(rows), res.Title, fmt.Errorf("%s", res.Error)))
		}
	}

	sortResults(result.Results)

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker is a worker goroutine that exports rows from the jobs channel.
func exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan models.Row, results chan<- CategoryExportResult, opts ExportOpts) {
	defer wg.Done()

	for row := range jobs {
		res := CategoryExportResult{Key: row.Key, Title: row.Title, Count: len(row.Movies), Files: []string{}}
		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			results <- res
			continue
		}

		path := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.%s", row.Key, opts.Format.Extension()))
		written, err := formatter.WriteExport([]models.Row{row}, opts.Format, path, opts.ImageBase)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Files = append(res.Files, written)
			res.Success = true
		}
		results <- res
	}
}

// sortResults restores category order, which workers do not preserve.
func sortResults(results []CategoryExportResult) {
	order := make(map[models.CategoryKey]int, len(models.Categories))
	for i, c := range models.Categories {
		order[c.Key] = i
	}
	slices.SortFunc(results, func(a, b CategoryExportResult) int {
		return order[a.Key] - order[b.Key]
	})
}
