package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/models"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"github.com/sirupsen/logrus"
)

const sweepModule = "workflow"

// RunLowStockSweep walks every stock record below its replenishment
// threshold and raises a PENDING low-stock requisition for each one that
// has no open request yet. It is idempotent: a second run before any
// approval creates nothing. Returns only the requisitions created by
// this run.
//
// A Redis lock keeps two instances from sweeping at the same time; the
// per-stock advisory lock inside sweepStock is what actually guarantees
// the dedup invariant, so a missing Redis connection degrades to a
// slower but still correct sweep.
func RunLowStockSweep(ctx context.Context, logger *logrus.Logger) ([]*models.Requisition, error) {
	release, err := utils.JobLock(ctx, "lowStockSweep", 2*time.Minute, sweepModule, "RunLowStockSweep")
	switch {
	case err == nil:
		defer release()
	case utils.IsConflict(err):
		logger.Info("low-stock sweep already running on another instance; skipping")
		return nil, nil
	default:
		// Redis unavailable. Proceed anyway; the per-stock advisory lock
		// still guarantees the dedup invariant, just without the
		// cross-instance fast path.
		logger.Warn("sweep lock unavailable; continuing without it: " + err.Error())
	}

	stocks, err := models.LowStockCompounds(ctx)
	if err != nil {
		config.LogError(logger, sweepModule, "RunLowStockSweep", "Failed to list low-stock compounds", nil, err)
		return nil, err
	}

	var created []*models.Requisition
	for _, stock := range stocks {
		requisition, err := sweepStock(ctx, stock.ID)
		if err != nil {
			config.LogError(logger, sweepModule, "RunLowStockSweep", "Sweep failed for stock", stock.ID, err)
			continue
		}
		if requisition != nil {
			logger.WithFields(logrus.Fields{
				"requisitionNumber": requisition.RequisitionNumber,
				"compoundStockId":   stock.ID,
			}).Info("low-stock requisition created")
			created = append(created, requisition)
		}
	}
	return created, nil
}

// sweepStock handles one stock record under the per-stock advisory lock.
// The transaction exists to pin a connection for GET_LOCK and to make
// the dedup check and the insert indivisible against concurrent
// triggers.
func sweepStock(ctx context.Context, stockId int) (*models.Requisition, error) {
	db := config.GetDB()

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	defer tx.Rollback()

	if err := models.AcquireStockReorderLock(tx, stockId); err != nil {
		return nil, err
	}
	// released before the rollback; advisory locks outlive a rollback
	defer models.ReleaseStockReorderLock(tx, stockId)

	// re-read under the lock; a concurrent receipt may have refilled it
	var stock models.CompoundStock
	if err := tx.WithContext(ctx).Preload("CompoundCoding").First(&stock, stockId).Error; err != nil {
		return nil, err
	}
	if !models.NeedsReorder(stock.QuantityKg, stock.MinStockLevelKg, stock.ReorderPointKg) {
		return nil, nil
	}

	open, err := models.HasOpenReplenishment(tx, ctx, stockId)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, nil
	}

	return models.CreateLowStockRequisition(ctx, &stock)
}
