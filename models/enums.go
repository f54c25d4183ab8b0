package models

import "bitbucket.org/mmdatafocus/rubberstock_backend/utils"

// MovementType classifies a stock ledger entry.
type MovementType string

const (
	MovementTypeIn         MovementType = "IN"
	MovementTypeOut        MovementType = "OUT"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

func (e MovementType) IsValid() bool {
	switch e {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

func (e MovementType) String() string { return string(e) }

// MovementReferenceType names the business event behind a ledger entry.
type MovementReferenceType string

const (
	MovementReferencePurchase     MovementReferenceType = "PURCHASE"
	MovementReferenceProduction   MovementReferenceType = "PRODUCTION"
	MovementReferenceManual       MovementReferenceType = "MANUAL"
	MovementReferenceStockTake    MovementReferenceType = "STOCK_TAKE"
	MovementReferenceOpeningStock MovementReferenceType = "OPENING_STOCK"
)

func (e MovementReferenceType) IsValid() bool {
	switch e {
	case MovementReferencePurchase, MovementReferenceProduction, MovementReferenceManual,
		MovementReferenceStockTake, MovementReferenceOpeningStock:
		return true
	}
	return false
}

func (e MovementReferenceType) String() string { return string(e) }

// ProductionStatus is the lifecycle of a production run.
type ProductionStatus string

const (
	ProductionStatusPending    ProductionStatus = "PENDING"
	ProductionStatusInProgress ProductionStatus = "IN_PROGRESS"
	ProductionStatusCompleted  ProductionStatus = "COMPLETED"
	ProductionStatusCancelled  ProductionStatus = "CANCELLED"
)

func (e ProductionStatus) IsValid() bool {
	switch e {
	case ProductionStatusPending, ProductionStatusInProgress,
		ProductionStatusCompleted, ProductionStatusCancelled:
		return true
	}
	return false
}

func (e ProductionStatus) String() string { return string(e) }

// ProcurementStatus is shared by compound orders and requisitions.
// PARTIALLY_RECEIVED only ever applies to requisitions.
type ProcurementStatus string

const (
	ProcurementStatusPending           ProcurementStatus = "PENDING"
	ProcurementStatusApproved          ProcurementStatus = "APPROVED"
	ProcurementStatusOrdered           ProcurementStatus = "ORDERED"
	ProcurementStatusPartiallyReceived ProcurementStatus = "PARTIALLY_RECEIVED"
	ProcurementStatusReceived          ProcurementStatus = "RECEIVED"
	ProcurementStatusCancelled         ProcurementStatus = "CANCELLED"
)

func (e ProcurementStatus) IsValid() bool {
	switch e {
	case ProcurementStatusPending, ProcurementStatusApproved, ProcurementStatusOrdered,
		ProcurementStatusPartiallyReceived, ProcurementStatusReceived, ProcurementStatusCancelled:
		return true
	}
	return false
}

func (e ProcurementStatus) String() string { return string(e) }

// RequisitionSourceType records what raised a requisition.
type RequisitionSourceType string

const (
	RequisitionSourceLowStock   RequisitionSourceType = "LOW_STOCK"
	RequisitionSourceManual     RequisitionSourceType = "MANUAL"
	RequisitionSourceExternalPo RequisitionSourceType = "EXTERNAL_PO"
)

func (e RequisitionSourceType) IsValid() bool {
	switch e {
	case RequisitionSourceLowStock, RequisitionSourceManual, RequisitionSourceExternalPo:
		return true
	}
	return false
}

func (e RequisitionSourceType) String() string { return string(e) }

// RequisitionItemType distinguishes compound line items from roll goods.
type RequisitionItemType string

const (
	RequisitionItemCompound RequisitionItemType = "COMPOUND"
	RequisitionItemRoll     RequisitionItemType = "ROLL"
)

func (e RequisitionItemType) IsValid() bool {
	switch e {
	case RequisitionItemCompound, RequisitionItemRoll:
		return true
	}
	return false
}

func (e RequisitionItemType) String() string { return string(e) }

// CodingType groups product coding entries (compound grades, lining types).
type CodingType string

const (
	CodingTypeCompound   CodingType = "COMPOUND"
	CodingTypeLiningType CodingType = "LINING_TYPE"
)

func (e CodingType) IsValid() bool {
	switch e {
	case CodingTypeCompound, CodingTypeLiningType:
		return true
	}
	return false
}

func (e CodingType) String() string { return string(e) }

func ParseMovementType(s string) (MovementType, error) {
	v := MovementType(s)
	if !v.IsValid() {
		return "", utils.NewValidation("invalid movement type %q", s)
	}
	return v, nil
}

func ParseMovementReferenceType(s string) (MovementReferenceType, error) {
	v := MovementReferenceType(s)
	if !v.IsValid() {
		return "", utils.NewValidation("invalid movement reference type %q", s)
	}
	return v, nil
}

func ParseProcurementStatus(s string) (ProcurementStatus, error) {
	v := ProcurementStatus(s)
	if !v.IsValid() {
		return "", utils.NewValidation("invalid status %q", s)
	}
	return v, nil
}
