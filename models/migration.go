package models

import (
	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
)

// MigrateTable creates/updates the schema. Ordered so referenced tables
// exist before the tables that point at them.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&ProductCoding{},
		&RubberProduct{},
		&StockLocation{},
		&Supplier{},
		&CompoundStock{},
		&CompoundMovement{},
		&Production{},
		&CompoundOrder{},
		&Requisition{},
		&RequisitionItem{},
	)
}
