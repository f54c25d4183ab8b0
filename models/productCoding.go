package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
)

// ProductCoding is a catalog entry for a rubber compound grade or a
// lining type. Compound stocks always reference a COMPOUND coding.
type ProductCoding struct {
	ID         int        `gorm:"primary_key" json:"id"`
	CodingType CodingType `gorm:"type:enum('COMPOUND','LINING_TYPE');not null;index" json:"coding_type" binding:"required"`
	Code       string     `gorm:"size:100;not null;uniqueIndex" json:"code" binding:"required"`
	Name       string     `gorm:"size:255;not null" json:"name" binding:"required"`
	IsActive   *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductCoding struct {
	CodingType CodingType `json:"coding_type" validate:"required"`
	Code       string     `json:"code" validate:"required"`
	Name       string     `json:"name" validate:"required"`
}

func (input NewProductCoding) validate(ctx context.Context, exceptId int) error {
	if !input.CodingType.IsValid() {
		return utils.NewValidation("invalid coding type %q", input.CodingType)
	}
	if err := utils.ValidateUnique[ProductCoding](ctx, "code", input.Code, exceptId); err != nil {
		return err
	}
	return nil
}

func CreateProductCoding(ctx context.Context, input *NewProductCoding) (*ProductCoding, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	coding := ProductCoding{
		CodingType: input.CodingType,
		Code:       input.Code,
		Name:       input.Name,
		IsActive:   utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&coding).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.NewConflict("duplicate code %q", input.Code)
		}
		return nil, err
	}
	return &coding, nil
}

func UpdateProductCoding(ctx context.Context, id int, input *NewProductCoding) (*ProductCoding, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	coding, err := utils.FetchSingleModel[ProductCoding](ctx, id)
	if err != nil {
		return nil, err
	}

	coding.CodingType = input.CodingType
	coding.Code = input.Code
	coding.Name = input.Name
	if err := db.WithContext(ctx).Save(coding).Error; err != nil {
		return nil, err
	}
	return coding, nil
}

func GetProductCoding(ctx context.Context, id int) (*ProductCoding, error) {
	return utils.FetchSingleModel[ProductCoding](ctx, id)
}

func GetProductCodings(ctx context.Context, codingType *CodingType) ([]*ProductCoding, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Order("code asc")
	if codingType != nil {
		dbCtx = dbCtx.Where("coding_type = ?", *codingType)
	}
	var codings []*ProductCoding
	if err := dbCtx.Find(&codings).Error; err != nil {
		return nil, err
	}
	return codings, nil
}

func DeleteProductCoding(ctx context.Context, id int) error {
	db := config.GetDB()

	coding, err := utils.FetchSingleModel[ProductCoding](ctx, id)
	if err != nil {
		return err
	}

	// a coding referenced by a stock record cannot be removed
	count, err := utils.ResourceCountWhere[CompoundStock](ctx, "compound_coding_id = ?", id)
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.NewConflict("coding %s is referenced by a compound stock", coding.Code)
	}

	return db.WithContext(ctx).Delete(coding).Error
}
