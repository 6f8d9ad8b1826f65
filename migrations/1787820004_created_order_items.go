package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		orders, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}
		ticketTypes, err := app.FindCollectionByNameOrId("ticket_types")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("order_items")
		collection.Fields.Add(
			&core.RelationField{
				Name:          "order_id",
				Required:      true,
				CollectionId:  orders.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.RelationField{
				Name:         "ticket_type_id",
				Required:     true,
				CollectionId: ticketTypes.Id,
				MaxSelect:    1,
			},
			&core.NumberField{Name: "quantity", Required: true, Min: types.Pointer(1.0), OnlyInt: true},
			// Price snapshot at purchase time, independent of later edits.
			&core.NumberField{Name: "price_per_unit", Min: types.Pointer(0.0)},
			&core.AutodateField{Name: "created", OnCreate: true},
		)
		collection.AddIndex("idx_order_items_order_id", false, "order_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("order_items")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
