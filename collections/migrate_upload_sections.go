package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// MigrateUploadSections fills in the sections schema of uploads stored
// without one, deriving it from the upload's rows. Safe to call on every
// startup -- uploads that already carry sections are left alone.
func MigrateUploadSections(app *pocketbase.PocketBase) error {
	uploadsCol, err := app.FindCollectionByNameOrId("catalog_uploads")
	if err != nil {
		return fmt.Errorf("migrate_sections: could not find catalog_uploads collection: %w", err)
	}

	uploads, err := app.FindAllRecords(uploadsCol)
	if err != nil {
		return fmt.Errorf("migrate_sections: could not query uploads: %w", err)
	}

	for _, upload := range uploads {
		var sections []sectionDef
		if err := upload.UnmarshalJSONField("sections", &sections); err == nil && len(sections) > 0 {
			continue
		}

		rows, err := app.FindRecordsByFilter(
			"catalog_rows",
			"upload = {:upload}",
			"sort_order",
			0, 0,
			map[string]any{"upload": upload.Id},
		)
		if err != nil {
			log.Printf("migrate_sections: failed to query rows of upload %s: %v\n", upload.Id, err)
			continue
		}

		seen := make(map[string]bool)
		sections = sections[:0]
		for _, row := range rows {
			name := row.GetString("section")
			if seen[name] {
				continue
			}
			seen[name] = true

			var attrs []attributeDef
			if err := row.UnmarshalJSONField("attributes", &attrs); err != nil {
				log.Printf("migrate_sections: row %s has unreadable attributes: %v\n", row.Id, err)
			}
			names := make([]string, len(attrs))
			for i, a := range attrs {
				names[i] = a.Name
			}
			sections = append(sections, sectionDef{Name: name, Attributes: names})
		}

		upload.Set("sections", sections)
		upload.Set("row_count", len(rows))
		if err := app.Save(upload); err != nil {
			log.Printf("migrate_sections: failed to update upload %s: %v\n", upload.Id, err)
			continue
		}
		log.Printf("migrate_sections: upload %s -> %d section(s)\n", upload.Id, len(sections))
	}

	return nil
}
