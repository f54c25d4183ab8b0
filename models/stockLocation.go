package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
)

// StockLocation is a named storage area (cold room, rack, warehouse bay).
type StockLocation struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockLocation struct {
	Name string `json:"name" validate:"required"`
}

func CreateStockLocation(ctx context.Context, input *NewStockLocation) (*StockLocation, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[StockLocation](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	location := StockLocation{Name: input.Name}
	if err := db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func UpdateStockLocation(ctx context.Context, id int, input *NewStockLocation) (*StockLocation, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[StockLocation](ctx, "name", input.Name, id); err != nil {
		return nil, err
	}

	location, err := utils.FetchSingleModel[StockLocation](ctx, id)
	if err != nil {
		return nil, err
	}

	location.Name = input.Name
	if err := db.WithContext(ctx).Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func GetStockLocations(ctx context.Context) ([]*StockLocation, error) {
	db := config.GetDB()
	var locations []*StockLocation
	if err := db.WithContext(ctx).Order("name asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func DeleteStockLocation(ctx context.Context, id int) error {
	db := config.GetDB()

	location, err := utils.FetchSingleModel[StockLocation](ctx, id)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(location).Error
}
