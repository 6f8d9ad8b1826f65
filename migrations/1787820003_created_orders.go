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

		collection := core.NewBaseCollection("orders")
		collection.Fields.Add(
			&core.RelationField{
				Name:         "event_id",
				Required:     true,
				CollectionId: events.Id,
				MaxSelect:    1,
			},
			// Optional purchaser identity, supplied externally.
			&core.TextField{Name: "customer_id"},
			&core.NumberField{Name: "total_amount", Min: types.Pointer(0.0)},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				Values:    []string{"pending", "completed", "rejected"},
				MaxSelect: 1,
			},
			&core.AutodateField{Name: "created", OnCreate: true},
		)
		collection.AddIndex("idx_orders_event_id", false, "event_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
