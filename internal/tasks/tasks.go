// package tasks implements the catalog page loader.
package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/reelx/internal/metrics"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
)

// Loader produces one catalog page per call.
type Loader interface {
	Load(ctx context.Context, progress chan<- ProgressUpdate) (*models.CatalogPage, error)
}

// PageLoader implements [Loader] over a metadata [services.Service].
type PageLoader struct {
	svc     services.Service
	logger  *log.Logger
	metrics *metrics.Metrics
}

var _ Loader = (*PageLoader)(nil)

type categoryOperation struct {
	category models.Category
	target   *[]models.Movie
}

// NewPageLoader creates a loader reading from svc.
func NewPageLoader(svc services.Service, logger *log.Logger) *PageLoader {
	if logger == nil {
		logger = log.Default()
	}
	return &PageLoader{svc: svc, logger: logger.WithPrefix("catalog")}
}

// WithMetrics records request latencies and page outcomes in m.
func (l *PageLoader) WithMetrics(m *metrics.Metrics) *PageLoader {
	l.metrics = m
	return l
}

// Load issues all eight category requests at once and waits for every one.
//
// On success each page field holds its category's results in response order.
// If any request fails the error is returned and the page is discarded.
func (l *PageLoader) Load(ctx context.Context, progress chan<- ProgressUpdate) (*models.CatalogPage, error) {
	if l.svc == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}

	page := &models.CatalogPage{}
	operations := make([]categoryOperation, len(models.Categories))
	for i, c := range models.Categories {
		operations[i] = categoryOperation{category: c, target: page.Field(c.Key)}
	}

	total := len(operations)
	var finished atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	for _, op := range operations {
		g.Go(func() error {
			start := time.Now()
			movies, err := l.svc.Results(gctx, op.category.Path)
			l.metrics.ObserveCategory(string(op.category.Key), time.Since(start), err)
			if err != nil {
				return fmt.Errorf("%s: %w", op.category.Key, err)
			}
			*op.target = movies

			step := int(finished.Add(1))
			sendProgress(progress, categoryFetchedUpdate(step, total, op.category, len(movies)))
			return nil
		})
	}

	err := g.Wait()
	l.metrics.IncrementPageLoad(err)
	if err != nil {
		l.logger.Error("catalog page failed", "error", err)
		return nil, err
	}

	l.logger.Debug("catalog page loaded", "categories", total)
	sendProgress(progress, pageAssembledUpdate(total, page))
	return page, nil
}
