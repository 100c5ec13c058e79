package formatter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	th "github.com/desertthunder/reelx/internal/testing"
)

func sampleRows() []models.Row {
	return []models.Row{
		{
			Key:   models.TopRated,
			Title: "Top Rated",
			Movies: []models.Movie{
				{ID: 238, Title: "The Godfather", ReleaseDate: "1972-03-14", VoteAverage: 8.7, VoteCount: 20000, Overview: "Family, business.", BackdropPath: "/godfather.jpg"},
				{ID: 278, Title: "The Shawshank Redemption", ReleaseDate: "1994-09-23", VoteAverage: 8.7, VoteCount: 26000},
			},
		},
		{
			Key:    models.Documentaries,
			Title:  "Documentaries",
			Movies: []models.Movie{},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"", JSON},
		{"JSON", JSON},
		{"csv", CSV},
		{"md", Markdown},
		{"markdown", Markdown},
		{"text", Text},
		{"txt", Text},
	}
	for _, tt := range tc {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	if Markdown.Extension() != "md" || CSV.Extension() != "csv" {
		t.Error("unexpected extensions")
	}
}

func TestExporters(t *testing.T) {
	rows := sampleRows()

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(rows)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []struct {
			Key     string         `json:"key"`
			Title   string         `json:"title"`
			Results []models.Movie `json:"results"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].Key != "top_rated" || len(decoded[0].Results) != 2 {
			t.Errorf("unexpected JSON %s", data)
		}
		if decoded[1].Results == nil {
			t.Error("empty rows should export an empty results array")
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(rows)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		lines := strings.Split(strings.TrimSpace(output), "\n")

		if lines[0] != "Category,Rank,ID,Title,Date,Rating,Votes,Overview" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if len(lines) != 3 {
			t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
		}
		if lines[1] != "top_rated,1,238,The Godfather,1972-03-14,8.7,20000,\"Family, business.\"" {
			t.Errorf("unexpected first record %q", lines[1])
		}
		if !strings.HasPrefix(lines[2], "top_rated,2,278,") {
			t.Errorf("unexpected second record %q", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(rows, "https://image.tmdb.org/t/p", "banner.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Catalog",
			"![Banner](banner.jpg)",
			"## Top Rated",
			"1. **The Godfather** (1972) ★ 8.7",
			"![The Godfather](https://image.tmdb.org/t/p/w500/godfather.jpg)",
			"2. **The Shawshank Redemption** (1994)",
			"## Documentaries",
			"_No titles._",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(rows)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "Top Rated (2 titles)\n1. The Godfather\n2. The Shawshank Redemption\n\nDocumentaries (0 titles)\n"
		if string(data) != want {
			t.Errorf("ExportToText() = %q, want %q", data, want)
		}
	})

	t.Run("Export rejects unknown formats", func(t *testing.T) {
		if _, err := Export(rows, Format("xml"), ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(ctx, nil, ""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		data, err := DownloadImage(ctx, server.Client(), server.URL+"/original/banner.jpg")
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadImage(ctx, nil, server.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	rows := sampleRows()

	t.Run("WriteExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			t.Chdir(tempDir)

			path, err := WriteExport(rows, CSV, "", "")
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if path != "catalog.csv" {
				t.Errorf("Expected file 'catalog.csv', got '%s'", path)
			}
			th.AssertFileExists(t, filepath.Join(tempDir, "catalog.csv"))
		})

		t.Run("WithNestedPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "exports", "catalog.txt")
			if _, err := WriteExport(rows, Text, path, ""); err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if !strings.Contains(th.MustReadFile(t, path), "Top Rated (2 titles)") {
				t.Error("text export missing content")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		dir := filepath.Join(t.TempDir(), "md")
		result, err := WriteMarkdownExport(context.Background(), server.Client(), rows, dir, "", server.URL+"/banner.jpg")
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if len(result.Files) != 2 {
			t.Errorf("expected banner and README, got %v", result.Files)
		}
		th.AssertFileExists(t, filepath.Join(dir, "banner.jpg"))
		if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Banner](banner.jpg)") {
			t.Error("README should reference the banner")
		}
	})

	t.Run("WriteMarkdownExport without banner", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")
		result, err := WriteMarkdownExport(context.Background(), nil, rows, dir, "", "")
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if result.Banner != "" || len(result.Files) != 1 {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		if err := WriteManifest(map[string]int{"files": 8}, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		if !strings.Contains(th.MustReadFile(t, path), `"files": 8`) {
			t.Error("manifest missing content")
		}

		if err := WriteManifest(map[string]int{}, filepath.Join(t.TempDir(), "missing", "m.json")); err == nil {
			t.Error("expected error writing into a missing directory")
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("manifest should exist: %v", err)
		}
	})
}
