package tasks

import (
	"fmt"

	"github.com/desertthunder/reelx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCategory Phase = iota
	AssemblePage
	ExportCategory
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchCategory:
		return "fetch_category"
	case AssemblePage:
		return "assemble_page"
	case ExportCategory:
		return "export_category"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func categoryFetchedUpdate(step, total int, c models.Category, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d titles)", step, total, c.Title, count),
		Data:    c.Key,
	}
}

func pageAssembledUpdate(total int, page *models.CatalogPage) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssemblePage,
		Step:    total,
		Total:   total,
		Message: "Catalog page ready",
		Data:    page,
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
		Data:    path,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
