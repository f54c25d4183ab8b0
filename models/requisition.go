package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Requisition is a multi-item procurement document. Items are owned by
// the requisition and die with it.
type Requisition struct {
	ID                     int                   `gorm:"primary_key" json:"id"`
	RequisitionNumber      string                `gorm:"size:100;not null;uniqueIndex" json:"requisition_number"`
	SequenceNo             int64                 `gorm:"not null" json:"sequence_no"`
	SourceType             RequisitionSourceType `gorm:"type:enum('LOW_STOCK','MANUAL','EXTERNAL_PO');not null;index" json:"source_type"`
	Status                 ProcurementStatus     `gorm:"type:enum('PENDING','APPROVED','ORDERED','PARTIALLY_RECEIVED','RECEIVED','CANCELLED');not null;index" json:"status"`
	SupplierId             int                   `gorm:"index;default:null" json:"supplier_id"`
	Supplier               *Supplier             `json:"supplier"`
	ExternalPoNumber       string                `gorm:"size:100;default:null" json:"external_po_number"`
	ExternalPoDocumentPath string                `gorm:"size:500;default:null" json:"external_po_document_path"`
	ExpectedDeliveryDate   *time.Time            `gorm:"default:null" json:"expected_delivery_date"`
	Notes                  string                `gorm:"type:text;default:null" json:"notes"`
	CreatedBy              string                `gorm:"size:255;not null" json:"created_by"`
	ApprovedBy             string                `gorm:"size:255;default:null" json:"approved_by"`
	ApprovedAt             *time.Time            `gorm:"default:null" json:"approved_at"`
	RejectedBy             string                `gorm:"size:255;default:null" json:"rejected_by"`
	RejectionReason        string                `gorm:"type:text;default:null" json:"rejection_reason"`
	RejectedAt             *time.Time            `gorm:"default:null" json:"rejected_at"`
	OrderedBy              string                `gorm:"size:255;default:null" json:"ordered_by"`
	OrderedAt              *time.Time            `gorm:"default:null" json:"ordered_at"`
	ReceivedAt             *time.Time            `gorm:"default:null" json:"received_at"`
	Items                  []RequisitionItem     `gorm:"constraint:OnDelete:CASCADE" json:"items" validate:"required,dive,required"`
	CreatedAt              time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type RequisitionItem struct {
	ID                 int                 `gorm:"primary_key" json:"id"`
	RequisitionId      int                 `gorm:"index;not null" json:"requisition_id"`
	ItemType           RequisitionItemType `gorm:"type:enum('COMPOUND','ROLL');not null" json:"item_type"`
	CompoundStockId    int                 `gorm:"index;default:null" json:"compound_stock_id"`
	CompoundCodingId   int                 `gorm:"index;default:null" json:"compound_coding_id"`
	CompoundName       string              `gorm:"size:255;not null" json:"compound_name"`
	QuantityKg         decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"quantity_kg"`
	QuantityReceivedKg decimal.Decimal     `gorm:"type:decimal(20,4);not null;default:0" json:"quantity_received_kg"`
	UnitPrice          decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Notes              string              `gorm:"type:text;default:null" json:"notes"`
}

type NewRequisitionItem struct {
	ItemType         RequisitionItemType `json:"item_type" validate:"required"`
	CompoundStockId  int                 `json:"compound_stock_id"`
	CompoundCodingId int                 `json:"compound_coding_id"`
	CompoundName     string              `json:"compound_name" validate:"required"`
	QuantityKg       decimal.Decimal     `json:"quantity_kg" validate:"required"`
	UnitPrice        decimal.Decimal     `json:"unit_price"`
	Notes            string              `json:"notes"`
}

type NewRequisition struct {
	SupplierId             int                  `json:"supplier_id"`
	ExternalPoNumber       string               `json:"external_po_number"`
	ExternalPoDocumentPath string               `json:"external_po_document_path"`
	ExpectedDeliveryDate   *time.Time           `json:"expected_delivery_date"`
	Notes                  string               `json:"notes"`
	Items                  []NewRequisitionItem `json:"items" validate:"required,min=1,dive"`
}

// TotalOrderedKg sums the ordered quantity across all items.
func (r Requisition) TotalOrderedKg() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.QuantityKg)
	}
	return total
}

// TotalReceivedKg sums the cumulative received quantity across all items.
func (r Requisition) TotalReceivedKg() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.QuantityReceivedKg)
	}
	return total
}

func (input NewRequisition) validate(ctx context.Context) error {
	for _, item := range input.Items {
		if !item.ItemType.IsValid() {
			return utils.NewValidation("invalid item type %q", item.ItemType)
		}
		if !item.QuantityKg.IsPositive() {
			return utils.NewValidation("item quantity must be positive for %s", item.CompoundName)
		}
		if item.UnitPrice.IsNegative() {
			return utils.NewValidation("unit price cannot be negative for %s", item.CompoundName)
		}
		if item.CompoundStockId > 0 {
			if err := utils.ValidateResourceId[CompoundStock](ctx, item.CompoundStockId); err != nil {
				return utils.NewValidation("compound stock id=%d not found", item.CompoundStockId)
			}
		}
		if item.CompoundCodingId > 0 {
			if err := utils.ValidateResourceId[ProductCoding](ctx, item.CompoundCodingId); err != nil {
				return utils.NewValidation("compound coding id=%d not found", item.CompoundCodingId)
			}
		}
	}
	if input.SupplierId > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
			return utils.NewValidation("supplier id=%d not found", input.SupplierId)
		}
	}
	return nil
}

func buildRequisitionItems(items []NewRequisitionItem) []RequisitionItem {
	var built []RequisitionItem
	for _, item := range items {
		built = append(built, RequisitionItem{
			ItemType:           item.ItemType,
			CompoundStockId:    item.CompoundStockId,
			CompoundCodingId:   item.CompoundCodingId,
			CompoundName:       item.CompoundName,
			QuantityKg:         item.QuantityKg,
			QuantityReceivedKg: decimal.Zero,
			UnitPrice:          item.UnitPrice,
			Notes:              item.Notes,
		})
	}
	return built
}

// createRequisition is the single constructor path shared by all three
// creation flavors.
func createRequisition(ctx context.Context, input *NewRequisition, sourceType RequisitionSourceType, status ProcurementStatus, createdBy string) (*Requisition, error) {
	db := config.GetDB()

	requisition := Requisition{
		SourceType:             sourceType,
		Status:                 status,
		SupplierId:             input.SupplierId,
		ExternalPoNumber:       input.ExternalPoNumber,
		ExternalPoDocumentPath: input.ExternalPoDocumentPath,
		ExpectedDeliveryDate:   input.ExpectedDeliveryDate,
		Notes:                  input.Notes,
		CreatedBy:              createdBy,
		Items:                  buildRequisitionItems(input.Items),
	}

	if status == ProcurementStatusApproved {
		now := time.Now().UTC()
		requisition.ApprovedBy = createdBy
		requisition.ApprovedAt = &now
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	seqNo, err := utils.GetSequence[Requisition](ctx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	requisition.SequenceNo = seqNo
	requisition.RequisitionNumber = utils.FormatDocumentNumber("REQ", seqNo)

	if err := tx.WithContext(ctx).Create(&requisition).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &requisition, nil
}

func CreateManualRequisition(ctx context.Context, input *NewRequisition) (*Requisition, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	return createRequisition(ctx, input, RequisitionSourceManual, ProcurementStatusPending, utils.CallerName(ctx))
}

// CreateExternalPoRequisition fast-tracks a requisition backed by an
// external purchase order. The PO number implies organizational
// sign-off, so the document is created already APPROVED with the creator
// recorded as approver.
func CreateExternalPoRequisition(ctx context.Context, input *NewRequisition) (*Requisition, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.ExternalPoNumber == "" {
		return nil, utils.NewValidation("external PO number is required")
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	return createRequisition(ctx, input, RequisitionSourceExternalPo, ProcurementStatusApproved, utils.CallerName(ctx))
}

// CreateLowStockRequisition raises a PENDING single-item requisition for
// a stock record below its minimum. Used by the low-stock sweep; dedup
// against existing open requests is the caller's responsibility (the
// sweep holds the per-stock advisory lock).
func CreateLowStockRequisition(ctx context.Context, stock *CompoundStock) (*Requisition, error) {
	name := fmt.Sprintf("stock id=%d", stock.ID)
	code := ""
	if stock.CompoundCoding != nil {
		name = stock.CompoundCoding.Name
		code = stock.CompoundCoding.Code
	}

	orderQty := ReorderQuantity(stock.QuantityKg, stock.MinStockLevelKg, stock.ReorderPointKg)
	if !orderQty.IsPositive() {
		return nil, utils.NewValidation("stock id=%d does not need replenishment", stock.ID)
	}

	input := NewRequisition{
		Notes: fmt.Sprintf("Auto-generated: %s (%s) is below minimum stock level. Current: %s kg, Minimum: %s kg",
			name, code, stock.QuantityKg.String(), stock.MinStockLevelKg.String()),
		Items: []NewRequisitionItem{{
			ItemType:         RequisitionItemCompound,
			CompoundStockId:  stock.ID,
			CompoundCodingId: stock.CompoundCodingId,
			CompoundName:     name,
			QuantityKg:       orderQty,
		}},
	}
	return createRequisition(ctx, &input, RequisitionSourceLowStock, ProcurementStatusPending, "System")
}

func GetRequisition(ctx context.Context, id int) (*Requisition, error) {
	return utils.FetchSingleModel[Requisition](ctx, id, "Items", "Supplier")
}

type RequisitionFilter struct {
	Status     *ProcurementStatus
	SourceType *RequisitionSourceType
}

func GetRequisitions(ctx context.Context, filter RequisitionFilter) ([]*Requisition, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items").Preload("Supplier").Order("created_at desc, id desc")
	if filter.Status != nil {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if filter.SourceType != nil {
		dbCtx = dbCtx.Where("source_type = ?", *filter.SourceType)
	}
	var requisitions []*Requisition
	if err := dbCtx.Find(&requisitions).Error; err != nil {
		return nil, err
	}
	return requisitions, nil
}

// PendingRequisitions lists the approval queue, oldest first.
func PendingRequisitions(ctx context.Context) ([]*Requisition, error) {
	db := config.GetDB()
	var requisitions []*Requisition
	err := db.WithContext(ctx).Preload("Items").Preload("Supplier").
		Where("status = ?", ProcurementStatusPending).
		Order("created_at asc").
		Find(&requisitions).Error
	if err != nil {
		return nil, err
	}
	return requisitions, nil
}

func ApproveRequisition(ctx context.Context, id int) (*Requisition, error) {
	db := config.GetDB()

	requisition, err := GetRequisition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRequisitionStatusIs(requisition, ProcurementStatusPending, ProcurementStatusApproved); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	approver := utils.CallerName(ctx)

	result := db.WithContext(ctx).Model(&Requisition{}).
		Where("id = ? AND status = ?", id, ProcurementStatusPending).
		Updates(map[string]interface{}{
			"status":      ProcurementStatusApproved,
			"approved_by": approver,
			"approved_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), ProcurementStatusApproved.String())
	}

	requisition.Status = ProcurementStatusApproved
	requisition.ApprovedBy = approver
	requisition.ApprovedAt = &now
	return requisition, nil
}

// RejectRequisition cancels a pending requisition and retains who
// rejected it and why. Rejection is a cancellation variant, not a
// distinct terminal state.
func RejectRequisition(ctx context.Context, id int, reason string) (*Requisition, error) {
	db := config.GetDB()

	if reason == "" {
		return nil, utils.NewValidation("rejection reason is required")
	}

	requisition, err := GetRequisition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRequisitionStatusIs(requisition, ProcurementStatusPending, ProcurementStatusCancelled); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rejector := utils.CallerName(ctx)

	result := db.WithContext(ctx).Model(&Requisition{}).
		Where("id = ? AND status = ?", id, ProcurementStatusPending).
		Updates(map[string]interface{}{
			"status":           ProcurementStatusCancelled,
			"rejected_by":      rejector,
			"rejection_reason": reason,
			"rejected_at":      now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), ProcurementStatusCancelled.String())
	}

	requisition.Status = ProcurementStatusCancelled
	requisition.RejectedBy = rejector
	requisition.RejectionReason = reason
	requisition.RejectedAt = &now
	return requisition, nil
}

type MarkOrderedInput struct {
	ExternalPoNumber     string     `json:"external_po_number"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
}

func MarkRequisitionOrdered(ctx context.Context, id int, input *MarkOrderedInput) (*Requisition, error) {
	db := config.GetDB()

	requisition, err := GetRequisition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRequisitionStatusIs(requisition, ProcurementStatusApproved, ProcurementStatusOrdered); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	orderer := utils.CallerName(ctx)

	updates := map[string]interface{}{
		"status":     ProcurementStatusOrdered,
		"ordered_by": orderer,
		"ordered_at": now,
	}
	if input != nil && input.ExternalPoNumber != "" {
		updates["external_po_number"] = input.ExternalPoNumber
	}
	if input != nil && input.ExpectedDeliveryDate != nil {
		updates["expected_delivery_date"] = *input.ExpectedDeliveryDate
	}

	result := db.WithContext(ctx).Model(&Requisition{}).
		Where("id = ? AND status = ?", id, ProcurementStatusApproved).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), ProcurementStatusOrdered.String())
	}

	return GetRequisition(ctx, id)
}

type RequisitionItemReceipt struct {
	ItemId     int             `json:"item_id" validate:"required,gt=0"`
	QuantityKg decimal.Decimal `json:"quantity_kg" validate:"required"`
}

// ReceiveRequisitionItems applies item-granular receipts. Quantities are
// cumulative; the requisition status is re-derived from all items after
// the receipts land, inside one transaction.
func ReceiveRequisitionItems(ctx context.Context, id int, receipts []RequisitionItemReceipt) (*Requisition, error) {
	db := config.GetDB()

	if len(receipts) == 0 {
		return nil, utils.NewValidation("no receipts supplied")
	}
	for _, receipt := range receipts {
		if !receipt.QuantityKg.IsPositive() {
			return nil, utils.NewValidation("received quantity must be positive for item id=%d", receipt.ItemId)
		}
	}

	requisition, err := GetRequisition(ctx, id)
	if err != nil {
		return nil, err
	}
	if requisition.Status != ProcurementStatusOrdered && requisition.Status != ProcurementStatusPartiallyReceived {
		return nil, utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), ProcurementStatusReceived.String())
	}

	itemIds := make(map[int]bool, len(requisition.Items))
	for _, item := range requisition.Items {
		itemIds[item.ID] = true
	}
	for _, receipt := range receipts {
		if !itemIds[receipt.ItemId] {
			return nil, utils.NewValidation("item id=%d does not belong to requisition %s", receipt.ItemId, requisition.RequisitionNumber)
		}
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	for _, receipt := range receipts {
		result := tx.WithContext(ctx).Model(&RequisitionItem{}).
			Where("id = ? AND requisition_id = ?", receipt.ItemId, id).
			Update("quantity_received_kg", gorm.Expr("quantity_received_kg + ?", receipt.QuantityKg))
		if result.Error != nil {
			tx.Rollback()
			return nil, result.Error
		}
	}

	var items []RequisitionItem
	if err := tx.WithContext(ctx).Where("requisition_id = ?", id).Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	newStatus := DeriveReceiptStatus(requisition.Status, items)
	if newStatus != requisition.Status {
		updates := map[string]interface{}{"status": newStatus}
		if newStatus == ProcurementStatusReceived {
			updates["received_at"] = time.Now().UTC()
		}
		result := tx.WithContext(ctx).Model(&Requisition{}).
			Where("id = ? AND status IN ?", id,
				[]ProcurementStatus{ProcurementStatusOrdered, ProcurementStatusPartiallyReceived}).
			Updates(updates)
		if result.Error != nil {
			tx.Rollback()
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return nil, utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), newStatus.String())
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetRequisition(ctx, id)
}

// CancelRequisition is permitted from any state except RECEIVED.
func CancelRequisition(ctx context.Context, id int) (*Requisition, error) {
	db := config.GetDB()

	requisition, err := GetRequisition(ctx, id)
	if err != nil {
		return nil, err
	}
	if requisition.Status == ProcurementStatusReceived || requisition.Status == ProcurementStatusCancelled {
		return nil, utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), ProcurementStatusCancelled.String())
	}

	result := db.WithContext(ctx).Model(&Requisition{}).
		Where("id = ? AND status NOT IN ?", id,
			[]ProcurementStatus{ProcurementStatusReceived, ProcurementStatusCancelled}).
		Update("status", ProcurementStatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), ProcurementStatusCancelled.String())
	}

	requisition.Status = ProcurementStatusCancelled
	return requisition, nil
}

func checkRequisitionStatusIs(requisition *Requisition, required ProcurementStatus, attempted ProcurementStatus) error {
	if requisition.Status != required {
		return utils.NewInvalidState(string(ProcurementEntityRequisition), requisition.Status.String(), attempted.String())
	}
	return checkProcurementTransition(ProcurementEntityRequisition, requisition.Status, attempted)
}
