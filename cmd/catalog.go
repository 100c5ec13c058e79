package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CatalogPage loads the eight categories of the home page.
func (r *Runner) CatalogPage(ctx context.Context, cmd *cli.Command) error {
	page, err := r.loadPage(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(page.All())
	if err != nil {
		return err
	}
	r.writePlainHeader("Home")
	if _, err := r.output.Write(text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// CatalogRow fetches one category by key.
func (r *Runner) CatalogRow(ctx context.Context, cmd *cli.Command) error {
	key := models.CategoryKey(cmd.StringArg("category"))
	if key == "" {
		return fmt.Errorf("%w: category key is required", shared.ErrMissingArgument)
	}

	c, ok := models.LookupCategory(key)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnknownCategory, key)
	}

	svc, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("fetching category", "key", key)
	movies, err := svc.Category(ctx, c)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, true)
	}

	text, err := formatter.ExportToText([]models.Row{{Key: c.Key, Title: c.Title, Movies: movies}})
	if err != nil {
		return err
	}
	if _, err := r.output.Write(text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// CatalogGet makes a direct GET request to the TMDB API with credentials attached.
func (r *Runner) CatalogGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	svc, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := svc.API().Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !cmd.Bool("json"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// CatalogExport loads the home page and writes it to disk.
//
// Without --split every category goes into one file; markdown exports get their own directory
// with the banner artwork downloaded next to the README.
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	output := cmd.String("output")

	page, err := r.loadPage(ctx)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("split"):
		return r.exportSplit(ctx, page, format, output, int(cmd.Int("workers")))
	case format == formatter.Markdown:
		bannerURL := ""
		if banner := page.Banner(rand.IntN); banner != nil {
			bannerURL = banner.BackdropURL(r.imageBase())
		}

		res, err := formatter.WriteMarkdownExport(ctx, r.httpClient, page.All(), output, r.imageBase(), bannerURL)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported catalog to %s\n", res.Directory)
		for _, f := range res.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	default:
		path, err := formatter.WriteExport(page.All(), format, output, r.imageBase())
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported catalog to %s\n", path)
	}
}

func (r *Runner) exportSplit(ctx context.Context, page *models.CatalogPage, format formatter.Format, dir string, workers int) error {
	progress := make(chan tasks.ProgressUpdate, len(models.Categories)+1)
	done := r.logProgress(progress)

	res, err := tasks.ExportPage(ctx, progress, page, tasks.ExportOpts{
		Format:     format,
		OutputDir:  dir,
		NumWorkers: workers,
		ImageBase:  r.imageBase(),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader("Export")
	r.writePlain("Directory: %s\n", res.OutputDirectory)
	r.writePlain("Succeeded: %d/%d\n", res.SuccessfulExports, res.TotalCategories)
	for _, c := range res.Results {
		if !c.Success {
			r.writePlain("  ✗ %s: %s\n", c.Title, c.Error)
		}
	}
	r.writePlain("Manifest: %s\n", res.ManifestPath)

	if res.FailedExports > 0 {
		return fmt.Errorf("%d of %d categories failed to export", res.FailedExports, res.TotalCategories)
	}
	return nil
}

func (r *Runner) loadPage(ctx context.Context) (*models.CatalogPage, error) {
	loader, err := r.catalogLoader(ctx)
	if err != nil {
		return nil, err
	}

	progress := make(chan tasks.ProgressUpdate, len(models.Categories)+1)
	done := r.logProgress(progress)

	page, err := loader.Load(ctx, progress)
	close(progress)
	<-done
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return page, nil
}

// logProgress logs updates until progress is closed, then closes the returned channel.
func (r *Runner) logProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()
	return done
}
