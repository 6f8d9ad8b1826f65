package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")
		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 100},
			&core.EditorField{Name: "description"},
			&core.DateField{Name: "date", Required: true},
			&core.TextField{Name: "location", Required: true},
			// Owner identity is supplied externally; no auth relation here.
			&core.TextField{Name: "user_id"},
			&core.NumberField{Name: "overall_ticket_limit", Min: types.Pointer(1.0), OnlyInt: true},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
