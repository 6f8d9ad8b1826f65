package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("ticket_types")
		collection.Fields.Add(
			&core.RelationField{
				Name:          "event_id",
				Required:      true,
				CollectionId:  events.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.TextField{Name: "name", Required: true, Max: 100},
			&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
			&core.NumberField{Name: "capacity", Required: true, Min: types.Pointer(1.0), OnlyInt: true},
			&core.NumberField{Name: "sold", Min: types.Pointer(0.0), OnlyInt: true},
			&core.EditorField{Name: "description"},
			&core.BoolField{Name: "is_gated"},
			// bcrypt hash only; plaintext is rejected by the create/update hook.
			&core.TextField{Name: "password_hash", Hidden: true},
			&core.AutodateField{Name: "created", OnCreate: true},
		)
		collection.AddIndex("idx_ticket_types_event_id", false, "event_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("ticket_types")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
