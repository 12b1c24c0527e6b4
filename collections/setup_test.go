package collections_test

import (
	"testing"

	"pipepricing/collections"
	"pipepricing/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"catalog_uploads",
	"catalog_rows",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_CatalogUploadsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("catalog_uploads")

	for _, f := range []string{"file_name", "sections", "row_count", "created", "updated"} {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("catalog_uploads: missing field %q", f)
		}
	}
	if _, ok := col.Fields.GetByName("sections").(*core.JSONField); !ok {
		t.Error("catalog_uploads.sections is not a JSONField")
	}
}

func TestSetup_CatalogRowsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("catalog_rows")

	for _, f := range []string{"upload", "section", "sort_order", "diameter", "weight", "attributes"} {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("catalog_rows: missing field %q", f)
		}
	}

	uploadField := col.Fields.GetByName("upload")
	if rf, ok := uploadField.(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("catalog_rows.upload: expected CascadeDelete=true")
		}
		if rf.MaxSelect != 1 {
			t.Errorf("catalog_rows.upload: expected MaxSelect=1, got %d", rf.MaxSelect)
		}
	} else {
		t.Error("catalog_rows.upload is not a RelationField")
	}

	// A zero weight marks a size that is not manufactured and must be storable.
	if nf, ok := col.Fields.GetByName("weight").(*core.NumberField); ok {
		if nf.Required {
			t.Error("catalog_rows.weight must not be required")
		}
	} else {
		t.Error("catalog_rows.weight is not a NumberField")
	}
}
