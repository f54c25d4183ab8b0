package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// Production is one manufacturing run of rubber sheets from a compound
// stock. CompoundRequiredKg is derived at creation for display; the
// actual deduction is computed again at completion.
type Production struct {
	ID                 int              `gorm:"primary_key" json:"id"`
	ProductionNumber   string           `gorm:"size:100;not null;uniqueIndex" json:"production_number"`
	SequenceNo         int64            `gorm:"not null" json:"sequence_no"`
	ProductId          int              `gorm:"index;not null" json:"product_id" binding:"required"`
	Product            *RubberProduct   `json:"product"`
	CompoundStockId    int              `gorm:"index;not null" json:"compound_stock_id" binding:"required"`
	CompoundStock      *CompoundStock   `json:"compound_stock"`
	ThicknessMm        decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"thickness_mm" binding:"required"`
	WidthMm            decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"width_mm" binding:"required"`
	LengthM            decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"length_m" binding:"required"`
	Quantity           int              `gorm:"not null" json:"quantity" binding:"required"`
	CompoundRequiredKg decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"compound_required_kg"`
	CompoundUsedKg     decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"compound_used_kg"`
	Status             ProductionStatus `gorm:"type:enum('PENDING','IN_PROGRESS','COMPLETED','CANCELLED');not null;index" json:"status"`
	OrderId            int              `gorm:"index;default:null" json:"order_id"`
	Notes              string           `gorm:"type:text;default:null" json:"notes"`
	CompletedAt        *time.Time       `gorm:"default:null" json:"completed_at"`
	CreatedBy          string           `gorm:"size:255;not null" json:"created_by"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduction struct {
	ProductId       int             `json:"product_id" validate:"required,gt=0"`
	CompoundStockId int             `json:"compound_stock_id" validate:"required,gt=0"`
	ThicknessMm     decimal.Decimal `json:"thickness_mm" validate:"required"`
	WidthMm         decimal.Decimal `json:"width_mm" validate:"required"`
	LengthM         decimal.Decimal `json:"length_m" validate:"required"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	OrderId         int             `json:"order_id"`
	Notes           string          `json:"notes"`
}

// CalculateCompoundWeight converts sheet geometry and material density
// into compound mass. Thickness and width arrive in millimetres, length
// in metres; specific gravity is relative to water.
//
//	volumeM3  = (thickness/1000) * (width/1000) * length
//	kgPerUnit = volumeM3 * specificGravity * 1000
//	totalKg   = kgPerUnit * quantity
func CalculateCompoundWeight(thicknessMm, widthMm, lengthM, specificGravity decimal.Decimal, quantity int) (kgPerUnit decimal.Decimal, totalKg decimal.Decimal) {
	thicknessM := thicknessMm.Div(thousand)
	widthM := widthMm.Div(thousand)
	volumeM3 := thicknessM.Mul(widthM).Mul(lengthM)
	kgPerUnit = volumeM3.Mul(specificGravity).Mul(thousand)
	totalKg = kgPerUnit.Mul(decimal.NewFromInt(int64(quantity)))
	return kgPerUnit, totalKg
}

// specificGravityOrDefault falls back to 1 when the product has none set.
func specificGravityOrDefault(product *RubberProduct) decimal.Decimal {
	if product.SpecificGravity.IsPositive() {
		return product.SpecificGravity
	}
	return decimal.NewFromInt(1)
}

func (input NewProduction) validate(ctx context.Context) error {
	if !input.ThicknessMm.IsPositive() || !input.WidthMm.IsPositive() || !input.LengthM.IsPositive() {
		return utils.NewValidation("thickness, width and length must be positive")
	}
	if err := utils.ValidateResourceId[RubberProduct](ctx, input.ProductId); err != nil {
		return utils.NewValidation("product id=%d not found", input.ProductId)
	}
	if err := utils.ValidateResourceId[CompoundStock](ctx, input.CompoundStockId); err != nil {
		return utils.NewValidation("compound stock id=%d not found", input.CompoundStockId)
	}
	return nil
}

func CreateProduction(ctx context.Context, input *NewProduction) (*Production, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	product, err := utils.FetchSingleModel[RubberProduct](ctx, input.ProductId)
	if err != nil {
		return nil, err
	}
	_, requiredKg := CalculateCompoundWeight(
		input.ThicknessMm, input.WidthMm, input.LengthM,
		specificGravityOrDefault(product), input.Quantity)

	production := Production{
		ProductId:          input.ProductId,
		CompoundStockId:    input.CompoundStockId,
		ThicknessMm:        input.ThicknessMm,
		WidthMm:            input.WidthMm,
		LengthM:            input.LengthM,
		Quantity:           input.Quantity,
		CompoundRequiredKg: requiredKg,
		Status:             ProductionStatusPending,
		OrderId:            input.OrderId,
		Notes:              input.Notes,
		CreatedBy:          utils.CallerName(ctx),
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	seqNo, err := utils.GetSequence[Production](ctx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	production.SequenceNo = seqNo
	production.ProductionNumber = utils.FormatDocumentNumber("PRD", seqNo)

	if err := tx.WithContext(ctx).Create(&production).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &production, nil
}

func GetProduction(ctx context.Context, id int) (*Production, error) {
	return utils.FetchSingleModel[Production](ctx, id, "Product", "CompoundStock", "CompoundStock.CompoundCoding")
}

func GetProductions(ctx context.Context, status *ProductionStatus) ([]*Production, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Product").Preload("CompoundStock").Order("created_at desc, id desc")
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var productions []*Production
	if err := dbCtx.Find(&productions).Error; err != nil {
		return nil, err
	}
	return productions, nil
}

// StartProduction moves a run from PENDING to IN_PROGRESS. The status
// write is conditional on the current status so two concurrent starts
// cannot both succeed.
func StartProduction(ctx context.Context, id int) (*Production, error) {
	db := config.GetDB()

	production, err := utils.FetchSingleModel[Production](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkProductionTransition(production.Status, ProductionStatusInProgress); err != nil {
		return nil, err
	}

	result := db.WithContext(ctx).Model(&Production{}).
		Where("id = ? AND status = ?", id, ProductionStatusPending).
		Update("status", ProductionStatusInProgress)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidState("production", production.Status.String(), ProductionStatusInProgress.String())
	}

	production.Status = ProductionStatusInProgress
	return production, nil
}

// CompleteProduction finishes a run: recompute the compound weight from
// the product's current specific gravity, deduct the stock, write the
// OUT ledger entry, and stamp completion, all in one transaction. The
// conditional status write guarantees the deduction happens exactly once.
func CompleteProduction(ctx context.Context, id int) (*Production, error) {
	db := config.GetDB()

	production, err := utils.FetchSingleModel[Production](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkProductionTransition(production.Status, ProductionStatusCompleted); err != nil {
		return nil, err
	}

	product, err := utils.FetchSingleModel[RubberProduct](ctx, production.ProductId)
	if err != nil {
		return nil, err
	}
	_, usedKg := CalculateCompoundWeight(
		production.ThicknessMm, production.WidthMm, production.LengthM,
		specificGravityOrDefault(product), production.Quantity)

	now := time.Now().UTC()

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	result := tx.WithContext(ctx).Model(&Production{}).
		Where("id = ? AND status = ?", id, ProductionStatusInProgress).
		Updates(map[string]interface{}{
			"status":           ProductionStatusCompleted,
			"compound_used_kg": usedKg,
			"completed_at":     now,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.NewInvalidState("production", production.Status.String(), ProductionStatusCompleted.String())
	}

	if err := consumeCompound(tx, ctx, production.CompoundStockId, usedKg, production.ID,
		"Production "+production.ProductionNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	production.Status = ProductionStatusCompleted
	production.CompoundUsedKg = usedKg
	production.CompletedAt = &now
	return production, nil
}

// CancelProduction is allowed from PENDING or IN_PROGRESS. A completed
// run already consumed material; reversal is a compensating adjustment,
// not a cancellation.
func CancelProduction(ctx context.Context, id int) (*Production, error) {
	db := config.GetDB()

	production, err := utils.FetchSingleModel[Production](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkProductionTransition(production.Status, ProductionStatusCancelled); err != nil {
		return nil, err
	}

	result := db.WithContext(ctx).Model(&Production{}).
		Where("id = ? AND status IN ?", id, []ProductionStatus{ProductionStatusPending, ProductionStatusInProgress}).
		Update("status", ProductionStatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidState("production", production.Status.String(), ProductionStatusCancelled.String())
	}

	production.Status = ProductionStatusCancelled
	return production, nil
}

type CompoundRequirementInput struct {
	ProductId   int             `json:"product_id" validate:"required,gt=0"`
	ThicknessMm decimal.Decimal `json:"thickness_mm" validate:"required"`
	WidthMm     decimal.Decimal `json:"width_mm" validate:"required"`
	LengthM     decimal.Decimal `json:"length_m" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
}

type CompoundRequirement struct {
	ProductTitle    string          `json:"product_title"`
	SpecificGravity decimal.Decimal `json:"specific_gravity"`
	KgPerUnit       decimal.Decimal `json:"kg_per_unit"`
	TotalKg         decimal.Decimal `json:"total_kg"`
}

// CalculateCompoundRequired previews the compound weight for a run
// without touching any stock.
func CalculateCompoundRequired(ctx context.Context, input *CompoundRequirementInput) (*CompoundRequirement, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !input.ThicknessMm.IsPositive() || !input.WidthMm.IsPositive() || !input.LengthM.IsPositive() {
		return nil, utils.NewValidation("thickness, width and length must be positive")
	}

	product, err := utils.FetchSingleModel[RubberProduct](ctx, input.ProductId)
	if err != nil {
		return nil, err
	}

	sg := specificGravityOrDefault(product)
	kgPerUnit, totalKg := CalculateCompoundWeight(input.ThicknessMm, input.WidthMm, input.LengthM, sg, input.Quantity)

	return &CompoundRequirement{
		ProductTitle:    product.Title,
		SpecificGravity: sg,
		KgPerUnit:       kgPerUnit,
		TotalKg:         totalKg,
	}, nil
}
