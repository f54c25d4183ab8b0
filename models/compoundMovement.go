package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompoundMovement is one immutable entry in the stock ledger. Entries
// are only ever appended; corrections are new ADJUSTMENT entries.
type CompoundMovement struct {
	ID              int                   `gorm:"primary_key" json:"id"`
	CompoundStockId int                   `gorm:"index;not null" json:"compound_stock_id" binding:"required"`
	MovementType    MovementType          `gorm:"type:enum('IN','OUT','ADJUSTMENT');not null;index" json:"movement_type" binding:"required"`
	QuantityKg      decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"quantity_kg" binding:"required"`
	ReferenceType   MovementReferenceType `gorm:"type:enum('PURCHASE','PRODUCTION','MANUAL','STOCK_TAKE','OPENING_STOCK');not null;index" json:"reference_type" binding:"required"`
	ReferenceId     int                   `gorm:"index;default:null" json:"reference_id"`
	BatchNumber     string                `gorm:"size:100;default:null" json:"batch_number"`
	Notes           string                `gorm:"type:text;default:null" json:"notes"`
	CreatedBy       string                `gorm:"size:255;not null" json:"created_by"`
	CreatedAt       time.Time             `gorm:"autoCreateTime" json:"created_at"`
}

// SignedQuantityKg returns the entry's contribution to the running
// balance. QuantityKg always stores the magnitude; IN adds, OUT and
// ADJUSTMENT subtract.
func (m CompoundMovement) SignedQuantityKg() decimal.Decimal {
	if m.MovementType == MovementTypeIn {
		return m.QuantityKg
	}
	return m.QuantityKg.Neg()
}

// appendCompoundMovement writes a ledger entry inside the caller's
// transaction so the entry and the balance update commit together.
func appendCompoundMovement(tx *gorm.DB, ctx context.Context, movement *CompoundMovement) error {
	return tx.WithContext(ctx).Create(movement).Error
}

type CompoundMovementFilter struct {
	CompoundStockId *int
	MovementType    *MovementType
	ReferenceType   *MovementReferenceType
}

func GetCompoundMovements(ctx context.Context, filter CompoundMovementFilter) ([]*CompoundMovement, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Order("created_at desc, id desc")
	if filter.CompoundStockId != nil {
		dbCtx = dbCtx.Where("compound_stock_id = ?", *filter.CompoundStockId)
	}
	if filter.MovementType != nil {
		dbCtx = dbCtx.Where("movement_type = ?", *filter.MovementType)
	}
	if filter.ReferenceType != nil {
		dbCtx = dbCtx.Where("reference_type = ?", *filter.ReferenceType)
	}

	var movements []*CompoundMovement
	if err := dbCtx.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
