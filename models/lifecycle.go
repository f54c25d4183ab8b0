package models

import (
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"github.com/shopspring/decimal"
)

// ProcurementEntity selects which transition table governs a document.
type ProcurementEntity string

const (
	ProcurementEntityCompoundOrder ProcurementEntity = "compound order"
	ProcurementEntityRequisition   ProcurementEntity = "requisition"
)

// Allowed status transitions for production runs.
var productionTransitions = map[ProductionStatus][]ProductionStatus{
	ProductionStatusPending:    {ProductionStatusInProgress, ProductionStatusCancelled},
	ProductionStatusInProgress: {ProductionStatusCompleted, ProductionStatusCancelled},
	ProductionStatusCompleted:  {},
	ProductionStatusCancelled:  {},
}

// Allowed status transitions for compound orders.
// RECEIVED is reached through ReceiveCompoundOrder, never set directly.
var compoundOrderTransitions = map[ProcurementStatus][]ProcurementStatus{
	ProcurementStatusPending:   {ProcurementStatusApproved, ProcurementStatusOrdered, ProcurementStatusCancelled},
	ProcurementStatusApproved:  {ProcurementStatusOrdered, ProcurementStatusReceived, ProcurementStatusCancelled},
	ProcurementStatusOrdered:   {ProcurementStatusReceived, ProcurementStatusCancelled},
	ProcurementStatusReceived:  {},
	ProcurementStatusCancelled: {},
}

// Allowed status transitions for requisitions. PARTIALLY_RECEIVED loops on
// itself so follow-up deliveries can land until every item is filled.
var requisitionTransitions = map[ProcurementStatus][]ProcurementStatus{
	ProcurementStatusPending:           {ProcurementStatusApproved, ProcurementStatusCancelled},
	ProcurementStatusApproved:          {ProcurementStatusOrdered, ProcurementStatusCancelled},
	ProcurementStatusOrdered:           {ProcurementStatusPartiallyReceived, ProcurementStatusReceived, ProcurementStatusCancelled},
	ProcurementStatusPartiallyReceived: {ProcurementStatusPartiallyReceived, ProcurementStatusReceived, ProcurementStatusCancelled},
	ProcurementStatusReceived:          {},
	ProcurementStatusCancelled:         {},
}

// CanTransitionProcurement reports whether a procurement document of the
// given kind may move from one status to another.
func CanTransitionProcurement(entity ProcurementEntity, from, to ProcurementStatus) bool {
	table := compoundOrderTransitions
	if entity == ProcurementEntityRequisition {
		table = requisitionTransitions
	}
	for _, allowed := range table[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionProduction reports whether a production run may move from
// one status to another.
func CanTransitionProduction(from, to ProductionStatus) bool {
	for _, allowed := range productionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsClosedProcurementStatus reports whether a status is terminal.
func IsClosedProcurementStatus(s ProcurementStatus) bool {
	return s == ProcurementStatusReceived || s == ProcurementStatusCancelled
}

// IsClosedProductionStatus reports whether a status is terminal.
func IsClosedProductionStatus(s ProductionStatus) bool {
	return s == ProductionStatusCompleted || s == ProductionStatusCancelled
}

// IsOpenProcurementStatus reports whether a document still counts toward
// pending-supply checks (reorder dedup, delete guards).
func IsOpenProcurementStatus(s ProcurementStatus) bool {
	return !IsClosedProcurementStatus(s)
}

func checkProcurementTransition(entity ProcurementEntity, current, attempted ProcurementStatus) error {
	if !CanTransitionProcurement(entity, current, attempted) {
		return utils.NewInvalidState(string(entity), current.String(), attempted.String())
	}
	return nil
}

func checkProductionTransition(current, attempted ProductionStatus) error {
	if !CanTransitionProduction(current, attempted) {
		return utils.NewInvalidState("production", current.String(), attempted.String())
	}
	return nil
}

// DeriveReceiptStatus computes a requisition's status from the receipt
// totals across all items. Cumulative receipts covering the total
// ordered means RECEIVED, so over-delivery on one item compensates a
// shortfall on another. Any progress means PARTIALLY_RECEIVED; no
// progress keeps the current status.
func DeriveReceiptStatus(current ProcurementStatus, items []RequisitionItem) ProcurementStatus {
	if len(items) == 0 {
		return current
	}
	totalOrdered := decimal.Zero
	totalReceived := decimal.Zero
	for _, item := range items {
		totalOrdered = totalOrdered.Add(item.QuantityKg)
		totalReceived = totalReceived.Add(item.QuantityReceivedKg)
	}
	if totalOrdered.IsPositive() && totalReceived.GreaterThanOrEqual(totalOrdered) {
		return ProcurementStatusReceived
	}
	if totalReceived.IsPositive() || current == ProcurementStatusPartiallyReceived {
		return ProcurementStatusPartiallyReceived
	}
	return current
}
