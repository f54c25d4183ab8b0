package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"github.com/shopspring/decimal"
)

// RubberProduct is a finished rubber sheet product. Its specific gravity
// drives the compound weight calculation for production runs.
type RubberProduct struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Title           string          `gorm:"size:255;not null" json:"title" binding:"required"`
	SpecificGravity decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"specific_gravity" binding:"required"`
	CostPerKg       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_per_kg"`
	Notes           string          `gorm:"type:text;default:null" json:"notes"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRubberProduct struct {
	Title           string          `json:"title" validate:"required"`
	SpecificGravity decimal.Decimal `json:"specific_gravity" validate:"required"`
	CostPerKg       decimal.Decimal `json:"cost_per_kg"`
	Notes           string          `json:"notes"`
}

func (input NewRubberProduct) validate() error {
	if !input.SpecificGravity.IsPositive() {
		return utils.NewValidation("specific gravity must be positive")
	}
	if input.CostPerKg.IsNegative() {
		return utils.NewValidation("cost per kg cannot be negative")
	}
	return nil
}

func CreateRubberProduct(ctx context.Context, input *NewRubberProduct) (*RubberProduct, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := RubberProduct{
		Title:           input.Title,
		SpecificGravity: input.SpecificGravity,
		CostPerKg:       input.CostPerKg,
		Notes:           input.Notes,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateRubberProduct(ctx context.Context, id int, input *NewRubberProduct) (*RubberProduct, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := utils.FetchSingleModel[RubberProduct](ctx, id)
	if err != nil {
		return nil, err
	}

	product.Title = input.Title
	product.SpecificGravity = input.SpecificGravity
	product.CostPerKg = input.CostPerKg
	product.Notes = input.Notes
	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetRubberProduct(ctx context.Context, id int) (*RubberProduct, error) {
	return utils.FetchSingleModel[RubberProduct](ctx, id)
}

func GetRubberProducts(ctx context.Context) ([]*RubberProduct, error) {
	db := config.GetDB()
	var products []*RubberProduct
	if err := db.WithContext(ctx).Order("title asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func DeleteRubberProduct(ctx context.Context, id int) error {
	db := config.GetDB()

	product, err := utils.FetchSingleModel[RubberProduct](ctx, id)
	if err != nil {
		return err
	}

	count, err := utils.ResourceCountWhere[Production](ctx, "product_id = ? AND status NOT IN ?", id,
		[]ProductionStatus{ProductionStatusCompleted, ProductionStatusCancelled})
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.NewConflict("product %s has open production runs", product.Title)
	}

	return db.WithContext(ctx).Delete(product).Error
}
