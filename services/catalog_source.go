package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pocketbase/pocketbase/core"
)

const importBatchSize = 100

// Source kinds reported by CatalogProvider.Source.
const (
	SourceFile   = "file"
	SourceUpload = "upload"
)

// SourceInfo describes the catalog source currently in use.
type SourceInfo struct {
	Kind string
	Name string
	key  string
	id   string
}

// uploadedSection is the per-sheet schema stored with an upload.
type uploadedSection struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
	Skipped    int      `json:"skipped"`
}

// UploadResult summarizes a committed replacement dataset.
type UploadResult struct {
	UploadID string
	FileName string
	Sections []string
	Rows     int
	Skipped  int
}

// CatalogProvider loads catalogs from the configured file, falling back to
// the most recent uploaded replacement when the file is absent. Parsed
// catalogs are cached per source and section.
type CatalogProvider struct {
	app      core.App
	path     string
	required []string

	mu    sync.Mutex
	cache map[string]*Catalog
}

// NewCatalogProvider creates a provider reading path first.
func NewCatalogProvider(app core.App, path string, requiredAttributes []string) *CatalogProvider {
	return &CatalogProvider{
		app:      app,
		path:     path,
		required: requiredAttributes,
		cache:    make(map[string]*Catalog),
	}
}

// Source reports which source Load would read. It returns ErrSourceMissing
// when there is neither a file nor an upload.
func (p *CatalogProvider) Source() (SourceInfo, error) {
	if p.path != "" {
		st, err := os.Stat(p.path)
		switch {
		case err == nil:
			return SourceInfo{
				Kind: SourceFile,
				Name: filepath.Base(p.path),
				key:  fmt.Sprintf("file:%s:%d", p.path, st.ModTime().UnixNano()),
			}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return SourceInfo{}, fmt.Errorf("stat catalog: %w", err)
		}
	}

	upload, err := p.latestUpload()
	if err != nil {
		return SourceInfo{}, err
	}
	if upload == nil {
		return SourceInfo{}, ErrSourceMissing
	}
	return SourceInfo{
		Kind: SourceUpload,
		Name: upload.GetString("file_name"),
		key:  "upload:" + upload.Id,
		id:   upload.Id,
	}, nil
}

// Load returns the catalog of the given material family. An empty material
// selects the first section.
func (p *CatalogProvider) Load(material string) (*Catalog, error) {
	src, err := p.Source()
	if err != nil {
		return nil, err
	}

	key := src.key + "|" + strings.ToUpper(strings.TrimSpace(material))
	p.mu.Lock()
	if cat, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return cat, nil
	}
	p.mu.Unlock()

	var cat *Catalog
	switch src.Kind {
	case SourceFile:
		cat, err = OpenCatalogFile(p.path, LoadOptions{Section: material, RequiredAttributes: p.required})
	default:
		cat, err = p.loadUpload(src.id, material)
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = cat
	p.mu.Unlock()
	return cat, nil
}

// Sections lists the material families of the active source.
func (p *CatalogProvider) Sections() ([]string, error) {
	src, err := p.Source()
	if err != nil {
		return nil, err
	}
	if src.Kind == SourceFile {
		f, err := os.Open(p.path)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		return ListSections(f, p.path)
	}

	sections, err := p.uploadSections(src.id)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names, nil
}

// Invalidate drops every cached catalog.
func (p *CatalogProvider) Invalidate() {
	p.mu.Lock()
	p.cache = make(map[string]*Catalog)
	p.mu.Unlock()
}

// Import normalizes an uploaded replacement dataset through the same path as
// file loading and stores it, replacing any previous upload.
func (p *CatalogProvider) Import(r io.Reader, fileName string) (*UploadResult, error) {
	catalogs, err := ParseAllSections(r, fileName, LoadOptions{RequiredAttributes: p.required})
	if err != nil {
		return nil, err
	}
	result, err := commitCatalogUpload(p.app, fileName, catalogs)
	if err != nil {
		return nil, err
	}
	p.Invalidate()
	return result, nil
}

func (p *CatalogProvider) latestUpload() (*core.Record, error) {
	col, err := p.app.FindCollectionByNameOrId("catalog_uploads")
	if err != nil {
		// Collections are created on serve; a CLI run before that has no uploads.
		return nil, nil
	}
	records, err := p.app.FindRecordsByFilter(col, "id != ''", "-created", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("query catalog uploads: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (p *CatalogProvider) uploadSections(uploadID string) ([]uploadedSection, error) {
	upload, err := p.app.FindRecordById("catalog_uploads", uploadID)
	if err != nil {
		return nil, fmt.Errorf("catalog upload %s: %w", uploadID, err)
	}
	var sections []uploadedSection
	if err := upload.UnmarshalJSONField("sections", &sections); err != nil {
		return nil, fmt.Errorf("decode upload sections: %w", err)
	}
	return sections, nil
}

func (p *CatalogProvider) loadUpload(uploadID, material string) (*Catalog, error) {
	sections, err := p.uploadSections(uploadID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	name, err := selectSheet(names, material)
	if err != nil {
		return nil, err
	}
	var section uploadedSection
	for _, s := range sections {
		if s.Name == name {
			section = s
			break
		}
	}

	records, err := p.app.FindRecordsByFilter("catalog_rows",
		"upload = {:upload} && section = {:section}", "sort_order", 0, 0,
		map[string]any{"upload": uploadID, "section": section.Name},
	)
	if err != nil {
		return nil, fmt.Errorf("query catalog rows: %w", err)
	}

	cat := &Catalog{
		Material:   strings.ToUpper(strings.TrimSpace(section.Name)),
		Attributes: section.Attributes,
		Rows:       make([]CatalogRow, 0, len(records)),
		Skipped:    section.Skipped,
	}
	for _, rec := range records {
		var attrs AttributeSet
		if err := rec.UnmarshalJSONField("attributes", &attrs); err != nil {
			return nil, fmt.Errorf("decode row %s attributes: %w", rec.Id, err)
		}
		cat.Rows = append(cat.Rows, CatalogRow{
			Diameter:   rec.GetFloat("diameter"),
			Attributes: attrs,
			Weight:     rec.GetFloat("weight"),
		})
	}
	return cat, nil
}

// commitCatalogUpload stores the normalized sections. Previous uploads are
// deleted in the same transaction; rows are inserted in chunks of
// importBatchSize.
func commitCatalogUpload(app core.App, fileName string, catalogs []*Catalog) (*UploadResult, error) {
	uploadsCol, err := app.FindCollectionByNameOrId("catalog_uploads")
	if err != nil {
		return nil, fmt.Errorf("catalog_uploads collection not found: %w", err)
	}
	rowsCol, err := app.FindCollectionByNameOrId("catalog_rows")
	if err != nil {
		return nil, fmt.Errorf("catalog_rows collection not found: %w", err)
	}

	result := &UploadResult{FileName: fileName}
	sections := make([]uploadedSection, len(catalogs))
	for i, c := range catalogs {
		sections[i] = uploadedSection{Name: c.Material, Attributes: c.Attributes, Skipped: c.Skipped}
		result.Sections = append(result.Sections, c.Material)
		result.Rows += len(c.Rows)
		result.Skipped += c.Skipped
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		previous, err := txApp.FindAllRecords(uploadsCol)
		if err != nil {
			return fmt.Errorf("list previous uploads: %w", err)
		}
		for _, rec := range previous {
			if err := txApp.Delete(rec); err != nil {
				return fmt.Errorf("delete previous upload %s: %w", rec.Id, err)
			}
		}

		upload := core.NewRecord(uploadsCol)
		upload.Set("file_name", fileName)
		upload.Set("sections", sections)
		upload.Set("row_count", result.Rows)
		if err := txApp.Save(upload); err != nil {
			return fmt.Errorf("save upload: %w", err)
		}
		result.UploadID = upload.Id

		for _, c := range catalogs {
			for chunkStart := 0; chunkStart < len(c.Rows); chunkStart += importBatchSize {
				chunkEnd := min(chunkStart+importBatchSize, len(c.Rows))
				for i, r := range c.Rows[chunkStart:chunkEnd] {
					rec := core.NewRecord(rowsCol)
					rec.Set("upload", upload.Id)
					rec.Set("section", c.Material)
					rec.Set("sort_order", chunkStart+i+1)
					rec.Set("diameter", r.Diameter)
					rec.Set("weight", r.Weight)
					rec.Set("attributes", r.Attributes)
					if err := txApp.Save(rec); err != nil {
						return fmt.Errorf("save %s row %d: %w", c.Material, chunkStart+i+2, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("commit catalog upload: %w", err)
	}
	return result, nil
}
