package models

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AcquireStockReorderLock serializes the reorder check-then-create window
// per stock record across instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB transaction that performs the dedup check and the insert.
func AcquireStockReorderLock(tx *gorm.DB, stockId int) error {
	lockName := fmt.Sprintf("reorder:%d", stockId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return utils.NewConflict("could not acquire reorder lock for stock id=%d", stockId)
	}
	return nil
}

func ReleaseStockReorderLock(tx *gorm.DB, stockId int) {
	lockName := fmt.Sprintf("reorder:%d", stockId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// ReorderQuantity computes how much to order for a stock sitting at qty.
// With a reorder point configured the order must cover both the reorder
// deficit and the restore-to-minimum deficit, whichever is larger.
func ReorderQuantity(qty, minStockLevel, reorderPoint decimal.Decimal) decimal.Decimal {
	minDeficit := minStockLevel.Sub(qty)
	if reorderPoint.IsPositive() {
		pointDeficit := reorderPoint.Sub(qty)
		if pointDeficit.GreaterThan(minDeficit) {
			return pointDeficit
		}
	}
	return minDeficit
}

// NeedsReorder reports whether a stock record has fallen below its
// replenishment threshold.
func NeedsReorder(qty, minStockLevel, reorderPoint decimal.Decimal) bool {
	if reorderPoint.IsPositive() {
		return qty.LessThan(reorderPoint)
	}
	return minStockLevel.IsPositive() && qty.LessThan(minStockLevel)
}

// HasOpenReplenishment reports whether a stock record already has supply
// on the way: any open compound order, or a pending low-stock
// requisition carrying an item for it.
// Both counts are locking reads. They read the latest committed state
// instead of the transaction snapshot, and they block on a replenishment
// row inserted by a transaction that has not resolved yet, so the
// answer stays true across another trigger's commit window.
func HasOpenReplenishment(tx *gorm.DB, ctx context.Context, stockId int) (bool, error) {
	var openOrders int64
	if err := tx.WithContext(ctx).Model(&CompoundOrder{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("compound_stock_id = ? AND status IN ?", stockId,
			[]ProcurementStatus{ProcurementStatusPending, ProcurementStatusApproved, ProcurementStatusOrdered}).
		Count(&openOrders).Error; err != nil {
		return false, err
	}
	if openOrders > 0 {
		return true, nil
	}

	var openRequisitionItems int64
	if err := tx.WithContext(ctx).Model(&RequisitionItem{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Joins("JOIN requisitions ON requisitions.id = requisition_items.requisition_id").
		Where("requisition_items.compound_stock_id = ?", stockId).
		Where("requisitions.source_type = ? AND requisitions.status = ?",
			RequisitionSourceLowStock, ProcurementStatusPending).
		Count(&openRequisitionItems).Error; err != nil {
		return false, err
	}
	return openRequisitionItems > 0, nil
}

// CheckAndCreateAutoOrder evaluates the reorder rule for one stock record
// inside the caller's transaction. It creates at most one PENDING
// auto-generated compound order; an existing open order or an open
// low-stock requisition for the same stock suppresses creation.
// The advisory lock is taken before the threshold read so the whole
// check runs against state no older than the lock acquisition.
func CheckAndCreateAutoOrder(tx *gorm.DB, ctx context.Context, stockId int) (*CompoundOrder, error) {
	if err := AcquireStockReorderLock(tx, stockId); err != nil {
		return nil, err
	}
	defer ReleaseStockReorderLock(tx, stockId)

	var stock CompoundStock
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stock, stockId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if !NeedsReorder(stock.QuantityKg, stock.MinStockLevelKg, stock.ReorderPointKg) {
		return nil, nil
	}

	open, err := HasOpenReplenishment(tx, ctx, stockId)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, nil
	}

	orderQty := ReorderQuantity(stock.QuantityKg, stock.MinStockLevelKg, stock.ReorderPointKg)
	if !orderQty.IsPositive() {
		return nil, nil
	}

	return createAutoCompoundOrder(tx, ctx, &stock, orderQty)
}
