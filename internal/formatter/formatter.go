// package formatter provides functions to export catalog data to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// Format is an export format name.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, CSV, Markdown, Text}

// ParseFormat accepts a format name case-insensitively; "md" and "text" are aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (use json, csv, markdown or txt)", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == Markdown {
		return "md"
	}
	return string(f)
}

// ExportToJSON converts rows to indented JSON keyed by category.
func ExportToJSON(rows []models.Row) ([]byte, error) {
	out := make([]jsonRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, jsonRow{Key: r.Key, Title: r.Title, Results: r.Movies})
	}
	return shared.MarshalJSON(out, true)
}

type jsonRow struct {
	Key     models.CategoryKey `json:"key"`
	Title   string             `json:"title"`
	Results []models.Movie     `json:"results"`
}

// ExportToCSV converts rows to CSV format with columns: Category, Rank, ID, Title, Date, Rating, Votes, Overview
func ExportToCSV(rows []models.Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Category", "Rank", "ID", "Title", "Date", "Rating", "Votes", "Overview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		for i, m := range row.Movies {
			record := []string{
				string(row.Key),
				strconv.Itoa(i + 1),
				strconv.Itoa(m.ID),
				m.DisplayTitle(),
				m.Date(),
				strconv.FormatFloat(m.VoteAverage, 'f', 1, 64),
				strconv.Itoa(m.VoteCount),
				m.Overview,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts rows to Markdown with one section per category.
//
// imageBase enables w500 thumbnails next to each title. bannerFile, when set, is embedded at the top.
func ExportToMarkdown(rows []models.Row, imageBase, bannerFile string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Catalog\n\n")

	if bannerFile != "" {
		buf.WriteString(fmt.Sprintf("![Banner](%s)\n\n", bannerFile))
	}

	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("## %s\n\n", row.Title))
		if len(row.Movies) == 0 {
			buf.WriteString("_No titles._\n\n")
			continue
		}
		for i, m := range row.Movies {
			datePart := ""
			if d := m.Date(); len(d) >= 4 {
				datePart = fmt.Sprintf(" (%s)", d[:4])
			}
			buf.WriteString(fmt.Sprintf("%d. **%s**%s ★ %.1f\n", i+1, m.DisplayTitle(), datePart, m.VoteAverage))
			if imageBase != "" {
				if thumb := m.ThumbnailURL(imageBase); thumb != "" {
					buf.WriteString(fmt.Sprintf("   ![%s](%s)\n", m.DisplayTitle(), thumb))
				}
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts rows to plain text format
func ExportToText(rows []models.Row) ([]byte, error) {
	var buf bytes.Buffer

	for i, row := range rows {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("%s (%d titles)\n", row.Title, len(row.Movies)))
		for j, m := range row.Movies {
			buf.WriteString(fmt.Sprintf("%d. %s\n", j+1, m.DisplayTitle()))
		}
	}

	return buf.Bytes(), nil
}

// Export renders rows in format.
func Export(rows []models.Row, format Format, imageBase string) ([]byte, error) {
	switch format {
	case JSON:
		return ExportToJSON(rows)
	case CSV:
		return ExportToCSV(rows)
	case Markdown:
		return ExportToMarkdown(rows, imageBase, "")
	case Text:
		return ExportToText(rows)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidArgument)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteExport renders rows in format and writes them to path.
//
// Defaults to catalog.{ext} in the working directory.
func WriteExport(rows []models.Row, format Format, path, imageBase string) (string, error) {
	if path == "" {
		path = "catalog." + format.Extension()
	}

	data, err := Export(rows, format, imageBase)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Banner    string
}

// WriteMarkdownExport exports rows to Markdown format in a dedicated directory.
//
// The bannerURL parameter is optional - if provided, attempts to download the banner image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/banner.jpg
func WriteMarkdownExport(ctx context.Context, client *http.Client, rows []models.Row, outputDir, imageBase, bannerURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "catalog"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var bannerFilename string
	if bannerURL != "" {
		imageData, err := DownloadImage(ctx, client, bannerURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download banner image: %v\n", err)
		} else {
			bannerFilename = "banner.jpg"
			bannerPath := filepath.Join(outputDir, bannerFilename)
			if err := os.WriteFile(bannerPath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save banner image: %v\n", err)
				bannerFilename = ""
			} else {
				result.Banner = bannerPath
				result.Files = append(result.Files, bannerPath)
			}
		}
	}

	mdData, err := ExportToMarkdown(rows, imageBase, bannerFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
