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

// CompoundOrder is a single-compound purchase order, either raised by an
// operator or auto-generated by the reorder trigger.
type CompoundOrder struct {
	ID               int               `gorm:"primary_key" json:"id"`
	OrderNumber      string            `gorm:"size:100;not null;uniqueIndex" json:"order_number"`
	SequenceNo       int64             `gorm:"not null" json:"sequence_no"`
	CompoundStockId  int               `gorm:"index;not null" json:"compound_stock_id" binding:"required"`
	CompoundStock    *CompoundStock    `json:"compound_stock"`
	QuantityKg       decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"quantity_kg" binding:"required"`
	Status           ProcurementStatus `gorm:"type:enum('PENDING','APPROVED','ORDERED','PARTIALLY_RECEIVED','RECEIVED','CANCELLED');not null;index" json:"status"`
	IsAutoGenerated  *bool             `gorm:"not null;default:false" json:"is_auto_generated"`
	SupplierName     string            `gorm:"size:255;default:null" json:"supplier_name"`
	ExpectedDelivery *time.Time        `gorm:"default:null" json:"expected_delivery"`
	Notes            string            `gorm:"type:text;default:null" json:"notes"`
	ReceivedAt       *time.Time        `gorm:"default:null" json:"received_at"`
	CreatedBy        string            `gorm:"size:255;not null" json:"created_by"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompoundOrder struct {
	CompoundStockId  int             `json:"compound_stock_id" validate:"required,gt=0"`
	QuantityKg       decimal.Decimal `json:"quantity_kg" validate:"required"`
	SupplierName     string          `json:"supplier_name"`
	ExpectedDelivery *time.Time      `json:"expected_delivery"`
	Notes            string          `json:"notes"`
}

func (input NewCompoundOrder) validate(ctx context.Context) error {
	if !input.QuantityKg.IsPositive() {
		return utils.NewValidation("order quantity must be positive")
	}
	if err := utils.ValidateResourceId[CompoundStock](ctx, input.CompoundStockId); err != nil {
		return utils.NewValidation("compound stock id=%d not found", input.CompoundStockId)
	}
	return nil
}

func CreateCompoundOrder(ctx context.Context, input *NewCompoundOrder) (*CompoundOrder, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	order := CompoundOrder{
		CompoundStockId:  input.CompoundStockId,
		QuantityKg:       input.QuantityKg,
		Status:           ProcurementStatusPending,
		IsAutoGenerated:  utils.NewFalse(),
		SupplierName:     input.SupplierName,
		ExpectedDelivery: input.ExpectedDelivery,
		Notes:            input.Notes,
		CreatedBy:        utils.CallerName(ctx),
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	seqNo, err := utils.GetSequence[CompoundOrder](ctx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	order.SequenceNo = seqNo
	order.OrderNumber = utils.FormatDocumentNumber("CPO", seqNo)

	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// createAutoCompoundOrder is called by the reorder trigger inside the
// mutating transaction, with the per-stock advisory lock held.
func createAutoCompoundOrder(tx *gorm.DB, ctx context.Context, stock *CompoundStock, orderQty decimal.Decimal) (*CompoundOrder, error) {
	seqNo, err := utils.GetSequence[CompoundOrder](ctx)
	if err != nil {
		return nil, err
	}

	threshold := stock.MinStockLevelKg
	if stock.ReorderPointKg.IsPositive() {
		threshold = stock.ReorderPointKg
	}

	order := CompoundOrder{
		OrderNumber:     utils.FormatDocumentNumber("CPO", seqNo),
		SequenceNo:      seqNo,
		CompoundStockId: stock.ID,
		QuantityKg:      orderQty,
		Status:          ProcurementStatusPending,
		IsAutoGenerated: utils.NewTrue(),
		Notes: fmt.Sprintf("Auto-generated: Stock fell below reorder point. Current: %s kg, Threshold: %s kg",
			stock.QuantityKg.String(), threshold.String()),
		CreatedBy: "System",
	}
	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func GetCompoundOrder(ctx context.Context, id int) (*CompoundOrder, error) {
	return utils.FetchSingleModel[CompoundOrder](ctx, id, "CompoundStock", "CompoundStock.CompoundCoding")
}

func GetCompoundOrders(ctx context.Context, status *ProcurementStatus) ([]*CompoundOrder, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("CompoundStock").Order("created_at desc, id desc")
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var orders []*CompoundOrder
	if err := dbCtx.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateCompoundOrderStatus moves an order through its pass-through
// states. RECEIVED is not settable here; receiving goes through
// ReceiveCompoundOrder so the stock and ledger move with it.
func UpdateCompoundOrderStatus(ctx context.Context, id int, status ProcurementStatus) (*CompoundOrder, error) {
	db := config.GetDB()

	if !status.IsValid() {
		return nil, utils.NewValidation("invalid status %q", status)
	}
	if status == ProcurementStatusReceived {
		return nil, utils.NewValidation("orders are received through the receive operation")
	}
	if status == ProcurementStatusPartiallyReceived {
		return nil, utils.NewValidation("compound orders cannot be partially received")
	}

	order, err := utils.FetchSingleModel[CompoundOrder](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkProcurementTransition(ProcurementEntityCompoundOrder, order.Status, status); err != nil {
		return nil, err
	}

	result := db.WithContext(ctx).Model(&CompoundOrder{}).
		Where("id = ? AND status = ?", id, order.Status).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidState(string(ProcurementEntityCompoundOrder), order.Status.String(), status.String())
	}

	order.Status = status
	return order, nil
}

type ReceiveCompoundOrderInput struct {
	ActualQuantityKg *decimal.Decimal `json:"actual_quantity_kg"`
	BatchNumber      string           `json:"batch_number"`
	Notes            string           `json:"notes"`
}

// ReceiveCompoundOrder books the delivery of an order: conditional status
// flip to RECEIVED, stock increase and IN ledger entry referencing the
// order, all in one transaction.
func ReceiveCompoundOrder(ctx context.Context, id int, input *ReceiveCompoundOrderInput) (*CompoundOrder, error) {
	db := config.GetDB()

	order, err := utils.FetchSingleModel[CompoundOrder](ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != ProcurementStatusApproved && order.Status != ProcurementStatusOrdered {
		return nil, utils.NewInvalidState(string(ProcurementEntityCompoundOrder), order.Status.String(), ProcurementStatusReceived.String())
	}

	receivedQty := order.QuantityKg
	if input.ActualQuantityKg != nil {
		receivedQty = *input.ActualQuantityKg
	}
	if !receivedQty.IsPositive() {
		return nil, utils.NewValidation("received quantity must be positive")
	}

	now := time.Now().UTC()

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	result := tx.WithContext(ctx).Model(&CompoundOrder{}).
		Where("id = ? AND status IN ?", id, []ProcurementStatus{ProcurementStatusApproved, ProcurementStatusOrdered}).
		Updates(map[string]interface{}{
			"status":      ProcurementStatusReceived,
			"received_at": now,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.NewInvalidState(string(ProcurementEntityCompoundOrder), order.Status.String(), ProcurementStatusReceived.String())
	}

	var stock CompoundStock
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stock, order.CompoundStockId).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	stock.QuantityKg = stock.QuantityKg.Add(receivedQty)
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
		QuantityKg:      receivedQty,
		ReferenceType:   MovementReferencePurchase,
		ReferenceId:     order.ID,
		BatchNumber:     input.BatchNumber,
		Notes:           input.Notes,
		CreatedBy:       utils.CallerName(ctx),
	}
	if err := appendCompoundMovement(tx, ctx, &movement); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	order.Status = ProcurementStatusReceived
	order.ReceivedAt = &now
	return order, nil
}
