package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompoundStock is the cached balance and reorder policy for one rubber
// compound. QuantityKg is a materialized view of the movement ledger and
// is only ever written by the ledger-writing operations in this file.
type CompoundStock struct {
	ID               int             `gorm:"primary_key" json:"id"`
	CompoundCodingId int             `gorm:"not null;uniqueIndex" json:"compound_coding_id" binding:"required"`
	CompoundCoding   *ProductCoding  `json:"compound_coding"`
	QuantityKg       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"quantity_kg"`
	MinStockLevelKg  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"min_stock_level_kg"`
	ReorderPointKg   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"reorder_point_kg"`
	CostPerKg        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_per_kg"`
	Location         string          `gorm:"size:255;default:null" json:"location"`
	BatchNumber      string          `gorm:"size:100;default:null" json:"batch_number"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompoundStock struct {
	CompoundCodingId int             `json:"compound_coding_id" validate:"required,gt=0"`
	MinStockLevelKg  decimal.Decimal `json:"min_stock_level_kg"`
	ReorderPointKg   decimal.Decimal `json:"reorder_point_kg"`
	CostPerKg        decimal.Decimal `json:"cost_per_kg"`
	Location         string          `json:"location"`
	BatchNumber      string          `json:"batch_number"`
}

// UpdateCompoundStockInput uses pointers so callers can change a single
// policy field without clobbering the rest. QuantityKg is deliberately
// absent; balances only move through receive/adjust/consume.
type UpdateCompoundStockInput struct {
	MinStockLevelKg *decimal.Decimal `json:"min_stock_level_kg"`
	ReorderPointKg  *decimal.Decimal `json:"reorder_point_kg"`
	CostPerKg       *decimal.Decimal `json:"cost_per_kg"`
	Location        *string          `json:"location"`
	BatchNumber     *string          `json:"batch_number"`
}

func (input NewCompoundStock) validate(ctx context.Context) error {
	coding, err := utils.FetchSingleModel[ProductCoding](ctx, input.CompoundCodingId)
	if err != nil {
		return err
	}
	if coding.CodingType != CodingTypeCompound {
		return utils.NewValidation("coding %s is not a compound coding", coding.Code)
	}
	if input.MinStockLevelKg.IsNegative() || input.ReorderPointKg.IsNegative() || input.CostPerKg.IsNegative() {
		return utils.NewValidation("stock levels and cost cannot be negative")
	}
	return nil
}

func CreateCompoundStock(ctx context.Context, input *NewCompoundStock) (*CompoundStock, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[CompoundStock](ctx, "compound_coding_id = ?", input.CompoundCodingId)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewConflict("stock record already exists for coding id=%d", input.CompoundCodingId)
	}

	stock := CompoundStock{
		CompoundCodingId: input.CompoundCodingId,
		QuantityKg:       decimal.Zero,
		MinStockLevelKg:  input.MinStockLevelKg,
		ReorderPointKg:   input.ReorderPointKg,
		CostPerKg:        input.CostPerKg,
		Location:         input.Location,
		BatchNumber:      input.BatchNumber,
	}
	if err := db.WithContext(ctx).Create(&stock).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.NewConflict("stock record already exists for coding id=%d", input.CompoundCodingId)
		}
		return nil, err
	}
	return &stock, nil
}

func UpdateCompoundStock(ctx context.Context, id int, input *UpdateCompoundStockInput) (*CompoundStock, error) {
	db := config.GetDB()

	stock, err := utils.FetchSingleModel[CompoundStock](ctx, id)
	if err != nil {
		return nil, err
	}

	if input.MinStockLevelKg != nil {
		if input.MinStockLevelKg.IsNegative() {
			return nil, utils.NewValidation("min stock level cannot be negative")
		}
		stock.MinStockLevelKg = *input.MinStockLevelKg
	}
	if input.ReorderPointKg != nil {
		if input.ReorderPointKg.IsNegative() {
			return nil, utils.NewValidation("reorder point cannot be negative")
		}
		stock.ReorderPointKg = *input.ReorderPointKg
	}
	if input.CostPerKg != nil {
		if input.CostPerKg.IsNegative() {
			return nil, utils.NewValidation("cost per kg cannot be negative")
		}
		stock.CostPerKg = *input.CostPerKg
	}
	if input.Location != nil {
		stock.Location = *input.Location
	}
	if input.BatchNumber != nil {
		stock.BatchNumber = *input.BatchNumber
	}

	if err := db.WithContext(ctx).Save(stock).Error; err != nil {
		return nil, err
	}
	return stock, nil
}

func DeleteCompoundStock(ctx context.Context, id int) error {
	db := config.GetDB()

	stock, err := utils.FetchSingleModel[CompoundStock](ctx, id)
	if err != nil {
		return err
	}

	openProductions, err := utils.ResourceCountWhere[Production](ctx,
		"compound_stock_id = ? AND status NOT IN ?", id,
		[]ProductionStatus{ProductionStatusCompleted, ProductionStatusCancelled})
	if err != nil {
		return err
	}
	openOrders, err := utils.ResourceCountWhere[CompoundOrder](ctx,
		"compound_stock_id = ? AND status NOT IN ?", id,
		[]ProcurementStatus{ProcurementStatusReceived, ProcurementStatusCancelled})
	if err != nil {
		return err
	}
	if openProductions > 0 || openOrders > 0 {
		return utils.NewConflict("stock id=%d is referenced by open workflows", id)
	}

	return db.WithContext(ctx).Delete(stock).Error
}

func GetCompoundStock(ctx context.Context, id int) (*CompoundStock, error) {
	return utils.FetchSingleModel[CompoundStock](ctx, id, "CompoundCoding")
}

func GetCompoundStocks(ctx context.Context) ([]*CompoundStock, error) {
	db := config.GetDB()
	var stocks []*CompoundStock
	if err := db.WithContext(ctx).Preload("CompoundCoding").Order("id asc").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// LowStockCompounds lists stocks sitting below their replenishment
// threshold (reorder point, or minimum level when no point is set).
func LowStockCompounds(ctx context.Context) ([]*CompoundStock, error) {
	db := config.GetDB()
	var stocks []*CompoundStock
	err := db.WithContext(ctx).Preload("CompoundCoding").
		Where("(reorder_point_kg > 0 AND quantity_kg < reorder_point_kg) OR (reorder_point_kg = 0 AND min_stock_level_kg > 0 AND quantity_kg < min_stock_level_kg)").
		Order("id asc").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

type ReceiveCompoundInput struct {
	QuantityKg  decimal.Decimal `json:"quantity_kg" validate:"required"`
	BatchNumber string          `json:"batch_number"`
	Notes       string          `json:"notes"`
}

// ReceiveCompound books a purchase delivery against a stock record: one
// IN ledger entry plus the balance increase, committed together.
func ReceiveCompound(ctx context.Context, stockId int, input *ReceiveCompoundInput) (*CompoundStock, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !input.QuantityKg.IsPositive() {
		return nil, utils.NewValidation("received quantity must be positive")
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	var stock CompoundStock
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stock, stockId).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	stock.QuantityKg = stock.QuantityKg.Add(input.QuantityKg)
	if input.BatchNumber != "" {
		stock.BatchNumber = input.BatchNumber
	}
	if err := tx.WithContext(ctx).Save(&stock).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	movement := CompoundMovement{
		CompoundStockId: stock.ID,
		MovementType:    MovementTypeIn,
		QuantityKg:      input.QuantityKg,
		ReferenceType:   MovementReferencePurchase,
		BatchNumber:     input.BatchNumber,
		Notes:           input.Notes,
		CreatedBy:       utils.CallerName(ctx),
	}
	if err := appendCompoundMovement(tx, ctx, &movement); err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := CheckAndCreateAutoOrder(tx, ctx, stock.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

type AdjustCompoundInput struct {
	NewQuantityKg decimal.Decimal `json:"new_quantity_kg"`
	Notes         string          `json:"notes"`
}

// AdjustCompound records a stock-take: the counted quantity overrides the
// running balance and the delta is written to the ledger (IN when the
// count is higher, ADJUSTMENT with the magnitude when lower).
func AdjustCompound(ctx context.Context, stockId int, input *AdjustCompoundInput) (*CompoundStock, error) {
	db := config.GetDB()

	if input.NewQuantityKg.IsNegative() {
		return nil, utils.NewValidation("counted quantity cannot be negative")
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	var stock CompoundStock
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stock, stockId).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	delta := input.NewQuantityKg.Sub(stock.QuantityKg)

	movementType := MovementTypeIn
	if delta.IsNegative() {
		movementType = MovementTypeAdjustment
	}

	stock.QuantityKg = input.NewQuantityKg
	if err := tx.WithContext(ctx).Save(&stock).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	movement := CompoundMovement{
		CompoundStockId: stock.ID,
		MovementType:    movementType,
		QuantityKg:      delta.Abs(),
		ReferenceType:   MovementReferenceStockTake,
		Notes:           input.Notes,
		CreatedBy:       utils.CallerName(ctx),
	}
	if err := appendCompoundMovement(tx, ctx, &movement); err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := CheckAndCreateAutoOrder(tx, ctx, stock.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// consumeCompound deducts production usage inside the caller's
// transaction. Only production completion calls this.
func consumeCompound(tx *gorm.DB, ctx context.Context, stockId int, qty decimal.Decimal, productionId int, notes string) error {
	if !qty.IsPositive() {
		return utils.NewValidation("consumed quantity must be positive")
	}

	var stock CompoundStock
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stock, stockId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	if stock.QuantityKg.LessThan(qty) {
		return utils.NewValidation("insufficient stock: on hand %s kg, required %s kg",
			stock.QuantityKg.String(), qty.String())
	}

	stock.QuantityKg = stock.QuantityKg.Sub(qty)
	if err := tx.WithContext(ctx).Save(&stock).Error; err != nil {
		return err
	}

	movement := CompoundMovement{
		CompoundStockId: stock.ID,
		MovementType:    MovementTypeOut,
		QuantityKg:      qty,
		ReferenceType:   MovementReferenceProduction,
		ReferenceId:     productionId,
		Notes:           notes,
		CreatedBy:       utils.CallerName(ctx),
	}
	if err := appendCompoundMovement(tx, ctx, &movement); err != nil {
		return err
	}

	if _, err := CheckAndCreateAutoOrder(tx, ctx, stock.ID); err != nil {
		return err
	}
	return nil
}

type NewCompoundOpeningStock struct {
	CompoundCodingId int             `json:"compound_coding_id" validate:"required,gt=0"`
	QuantityKg       decimal.Decimal `json:"quantity_kg"`
	MinStockLevelKg  decimal.Decimal `json:"min_stock_level_kg"`
	ReorderPointKg   decimal.Decimal `json:"reorder_point_kg"`
	CostPerKg        decimal.Decimal `json:"cost_per_kg"`
	Location         string          `json:"location"`
	BatchNumber      string          `json:"batch_number"`
}

// CreateCompoundOpeningStock creates a stock record together with its
// OPENING_STOCK ledger entry in one transaction.
func CreateCompoundOpeningStock(ctx context.Context, input *NewCompoundOpeningStock) (*CompoundStock, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.QuantityKg.IsNegative() {
		return nil, utils.NewValidation("opening quantity cannot be negative")
	}

	newStock := NewCompoundStock{
		CompoundCodingId: input.CompoundCodingId,
		MinStockLevelKg:  input.MinStockLevelKg,
		ReorderPointKg:   input.ReorderPointKg,
		CostPerKg:        input.CostPerKg,
		Location:         input.Location,
		BatchNumber:      input.BatchNumber,
	}
	if err := newStock.validate(ctx); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[CompoundStock](ctx, "compound_coding_id = ?", input.CompoundCodingId)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewConflict("stock record already exists for coding id=%d", input.CompoundCodingId)
	}

	stock := CompoundStock{
		CompoundCodingId: input.CompoundCodingId,
		QuantityKg:       input.QuantityKg,
		MinStockLevelKg:  input.MinStockLevelKg,
		ReorderPointKg:   input.ReorderPointKg,
		CostPerKg:        input.CostPerKg,
		Location:         input.Location,
		BatchNumber:      input.BatchNumber,
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	if err := tx.WithContext(ctx).Create(&stock).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if input.QuantityKg.IsPositive() {
		movement := CompoundMovement{
			CompoundStockId: stock.ID,
			MovementType:    MovementTypeIn,
			QuantityKg:      input.QuantityKg,
			ReferenceType:   MovementReferenceOpeningStock,
			BatchNumber:     input.BatchNumber,
			Notes:           "Opening stock",
			CreatedBy:       utils.CallerName(ctx),
		}
		if err := appendCompoundMovement(tx, ctx, &movement); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

type OpeningStockRow struct {
	CompoundCode    string          `json:"compound_code"`
	QuantityKg      decimal.Decimal `json:"quantity_kg"`
	MinStockLevelKg decimal.Decimal `json:"min_stock_level_kg"`
	ReorderPointKg  decimal.Decimal `json:"reorder_point_kg"`
	CostPerKg       decimal.Decimal `json:"cost_per_kg"`
	Location        string          `json:"location"`
	BatchNumber     string          `json:"batch_number"`
}

type OpeningStockImportResult struct {
	Created  int      `json:"created"`
	ToppedUp int      `json:"topped_up"`
	Errors   []string `json:"errors"`
}

// ImportCompoundOpeningStock loads opening balances in bulk. Each row is
// applied independently with its own transaction so one bad row does not
// sink the batch; failures are reported per row.
func ImportCompoundOpeningStock(ctx context.Context, rows []OpeningStockRow) (*OpeningStockImportResult, error) {
	db := config.GetDB()
	result := &OpeningStockImportResult{}

	for i, row := range rows {
		rowErr := func() error {
			if row.CompoundCode == "" {
				return utils.NewValidation("compound code is required")
			}
			if row.QuantityKg.IsNegative() {
				return utils.NewValidation("quantity cannot be negative")
			}

			var coding ProductCoding
			if err := db.WithContext(ctx).
				Where("code = ? AND coding_type = ?", row.CompoundCode, CodingTypeCompound).
				First(&coding).Error; err != nil {
				return utils.NewValidation("compound code %s not found", row.CompoundCode)
			}

			var stock CompoundStock
			err := db.WithContext(ctx).Where("compound_coding_id = ?", coding.ID).First(&stock).Error
			if err == gorm.ErrRecordNotFound {
				_, err := CreateCompoundOpeningStock(ctx, &NewCompoundOpeningStock{
					CompoundCodingId: coding.ID,
					QuantityKg:       row.QuantityKg,
					MinStockLevelKg:  row.MinStockLevelKg,
					ReorderPointKg:   row.ReorderPointKg,
					CostPerKg:        row.CostPerKg,
					Location:         row.Location,
					BatchNumber:      row.BatchNumber,
				})
				if err != nil {
					return err
				}
				result.Created++
				return nil
			} else if err != nil {
				return err
			}

			// existing stock: top up with an OPENING_STOCK entry
			if !row.QuantityKg.IsPositive() {
				return utils.NewValidation("stock for %s already exists and quantity is zero", row.CompoundCode)
			}
			tx := db.Begin()
			var locked CompoundStock
			if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&locked, stock.ID).Error; err != nil {
				tx.Rollback()
				return err
			}
			locked.QuantityKg = locked.QuantityKg.Add(row.QuantityKg)
			if err := tx.WithContext(ctx).Save(&locked).Error; err != nil {
				tx.Rollback()
				return err
			}
			movement := CompoundMovement{
				CompoundStockId: locked.ID,
				MovementType:    MovementTypeIn,
				QuantityKg:      row.QuantityKg,
				ReferenceType:   MovementReferenceOpeningStock,
				BatchNumber:     row.BatchNumber,
				Notes:           "Opening stock import",
				CreatedBy:       utils.CallerName(ctx),
			}
			if err := appendCompoundMovement(tx, ctx, &movement); err != nil {
				tx.Rollback()
				return err
			}
			if err := tx.Commit().Error; err != nil {
				return err
			}
			result.ToppedUp++
			return nil
		}()
		if rowErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %s", i+1, row.CompoundCode, rowErr.Error()))
		}
	}

	return result, nil
}
