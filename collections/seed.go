package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type attributeDef struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type rowDef struct {
	diameter   float64
	weight     float64
	attributes []attributeDef
}

type sectionDef struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
	Skipped    int      `json:"skipped"`
	rows       []rowDef
}

func hdpeRow(diameter float64, pn, sdr string, weight float64) rowDef {
	return rowDef{
		diameter:   diameter,
		weight:     weight,
		attributes: []attributeDef{{"PN", pn}, {"SDR", sdr}},
	}
}

func upvcRow(diameter float64, class string, weight float64) rowDef {
	return rowDef{
		diameter:   diameter,
		weight:     weight,
		attributes: []attributeDef{{"CLASS", class}},
	}
}

// demoSections is a small HDPE / UPVC catalog for trying the calculator
// without a catalog file. A zero weight marks a size that is not made.
var demoSections = []sectionDef{
	{
		Name:       "HDPE",
		Attributes: []string{"PN", "SDR"},
		rows: []rowDef{
			hdpeRow(20, "10", "17", 0),
			hdpeRow(25, "10", "17", 0.162),
			hdpeRow(32, "10", "17", 0.252),
			hdpeRow(63, "10", "17", 0.94),
			hdpeRow(63, "16", "11", 1.4),
			hdpeRow(110, "10", "17", 2.85),
			hdpeRow(110, "16", "11", 4.23),
			hdpeRow(160, "10", "17", 6.0),
			hdpeRow(160, "16", "11", 8.92),
			hdpeRow(225, "10", "17", 11.8),
			hdpeRow(315, "10", "17", 23.1),
		},
	},
	{
		Name:       "UPVC",
		Attributes: []string{"CLASS"},
		rows: []rowDef{
			upvcRow(50, "-", 0.6),
			upvcRow(75, "-", 1.1),
			upvcRow(110, "4", 1.85),
			upvcRow(110, "6", 2.6),
			upvcRow(160, "4", 3.9),
			upvcRow(160, "6", 5.5),
			upvcRow(225, "4", 7.6),
		},
	},
}

// Seed stores the demo catalog as an upload. It is safe to call on every
// startup because it returns early if any upload already exists.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if an upload already exists ─────────────────
	uploadsCol, err := app.FindCollectionByNameOrId("catalog_uploads")
	if err != nil {
		return fmt.Errorf("seed: could not find catalog_uploads collection: %w", err)
	}
	existing, err := app.FindAllRecords(uploadsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query catalog uploads: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	rowsCol, err := app.FindCollectionByNameOrId("catalog_rows")
	if err != nil {
		return fmt.Errorf("seed: could not find catalog_rows collection: %w", err)
	}

	log.Println("seed: no catalog uploaded, inserting demo catalog")

	rowCount := 0
	for _, s := range demoSections {
		rowCount += len(s.rows)
	}

	return app.RunInTransaction(func(txApp core.App) error {
		upload := core.NewRecord(uploadsCol)
		upload.Set("file_name", "demo-catalog.xlsx")
		upload.Set("sections", demoSections)
		upload.Set("row_count", rowCount)
		if err := txApp.Save(upload); err != nil {
			return fmt.Errorf("seed: save upload: %w", err)
		}

		for _, s := range demoSections {
			for i, r := range s.rows {
				rec := core.NewRecord(rowsCol)
				rec.Set("upload", upload.Id)
				rec.Set("section", s.Name)
				rec.Set("sort_order", i+1)
				rec.Set("diameter", r.diameter)
				rec.Set("weight", r.weight)
				rec.Set("attributes", r.attributes)
				if err := txApp.Save(rec); err != nil {
					return fmt.Errorf("seed: save %s row %d: %w", s.Name, i+1, err)
				}
			}
			log.Printf("seed: %s: %d rows\n", s.Name, len(s.rows))
		}
		return nil
	})
}
