package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the catalog_uploads and
// catalog_rows collections exist.
func Setup(app *pocketbase.PocketBase) {
	uploads := ensureCollection(app, "catalog_uploads", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "file_name", Required: true})
		c.Fields.Add(&core.JSONField{Name: "sections"})
		c.Fields.Add(&core.NumberField{Name: "row_count", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "catalog_rows", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "upload",
			Required:      true,
			CollectionId:  uploads.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "section", Required: true})
		// sort_order and weight may legitimately be zero, so neither is Required.
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.NumberField{Name: "diameter", Required: true})
		c.Fields.Add(&core.NumberField{Name: "weight", Required: false})
		c.Fields.Add(&core.JSONField{Name: "attributes"})
		c.AddIndex("idx_catalog_rows_section", false, "upload, section, sort_order", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
