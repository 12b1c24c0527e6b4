// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/xuri/excelize/v2"

	"pipepricing/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CatalogSheet is one material section of a test workbook.
type CatalogSheet struct {
	Name string
	Rows [][]any
}

// DefaultCatalog is the workbook most tests use:
//
//	HDPE  Diameter | PN | SDR | Weight
//	UPVC  Diameter | Class | Weight
var DefaultCatalog = []CatalogSheet{
	{
		Name: "HDPE",
		Rows: [][]any{
			{"Diameter", "PN", "SDR", "Weight"},
			{20, 10, 17, 0},
			{63, 10, 17, 0.94},
			{63, 16, 11, 1.4},
			{110, 10, 17, 2.85},
			{110, 16, 11, 4.23},
			{160, 10, 17, 6},
		},
	},
	{
		Name: "UPVC",
		Rows: [][]any{
			{"Diameter", "Class", "Weight"},
			{110, 4, 1.85},
			{110, 6, 2.6},
			{160, "", 3.9},
		},
	},
}

// CatalogWorkbook builds an .xlsx with one sheet per CatalogSheet.
func CatalogWorkbook(t *testing.T, sheets []CatalogSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("add sheet %q: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				t.Fatalf("write %s row %d: %v", s.Name, r+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteCatalogFile writes the workbook into a temp dir and returns its path.
func WriteCatalogFile(t *testing.T, sheets []CatalogSheet) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	if err := os.WriteFile(path, CatalogWorkbook(t, sheets), 0o644); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}
	return path
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
