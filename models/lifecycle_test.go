package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func allProcurementStatuses() []ProcurementStatus {
	return []ProcurementStatus{
		ProcurementStatusPending,
		ProcurementStatusApproved,
		ProcurementStatusOrdered,
		ProcurementStatusPartiallyReceived,
		ProcurementStatusReceived,
		ProcurementStatusCancelled,
	}
}

func TestCompoundOrderTransitions(t *testing.T) {
	allowed := map[[2]ProcurementStatus]bool{
		{ProcurementStatusPending, ProcurementStatusApproved}:   true,
		{ProcurementStatusPending, ProcurementStatusOrdered}:    true,
		{ProcurementStatusPending, ProcurementStatusCancelled}:  true,
		{ProcurementStatusApproved, ProcurementStatusOrdered}:   true,
		{ProcurementStatusApproved, ProcurementStatusReceived}:  true,
		{ProcurementStatusApproved, ProcurementStatusCancelled}: true,
		{ProcurementStatusOrdered, ProcurementStatusReceived}:   true,
		{ProcurementStatusOrdered, ProcurementStatusCancelled}:  true,
	}

	for _, from := range allProcurementStatuses() {
		for _, to := range allProcurementStatuses() {
			want := allowed[[2]ProcurementStatus{from, to}]
			got := CanTransitionProcurement(ProcurementEntityCompoundOrder, from, to)
			if got != want {
				t.Errorf("compound order %s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestRequisitionTransitions(t *testing.T) {
	allowed := map[[2]ProcurementStatus]bool{
		{ProcurementStatusPending, ProcurementStatusApproved}:                     true,
		{ProcurementStatusPending, ProcurementStatusCancelled}:                    true,
		{ProcurementStatusApproved, ProcurementStatusOrdered}:                     true,
		{ProcurementStatusApproved, ProcurementStatusCancelled}:                   true,
		{ProcurementStatusOrdered, ProcurementStatusPartiallyReceived}:            true,
		{ProcurementStatusOrdered, ProcurementStatusReceived}:                     true,
		{ProcurementStatusOrdered, ProcurementStatusCancelled}:                    true,
		{ProcurementStatusPartiallyReceived, ProcurementStatusPartiallyReceived}:  true,
		{ProcurementStatusPartiallyReceived, ProcurementStatusReceived}:           true,
		{ProcurementStatusPartiallyReceived, ProcurementStatusCancelled}:          true,
	}

	for _, from := range allProcurementStatuses() {
		for _, to := range allProcurementStatuses() {
			want := allowed[[2]ProcurementStatus{from, to}]
			got := CanTransitionProcurement(ProcurementEntityRequisition, from, to)
			if got != want {
				t.Errorf("requisition %s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestProductionTransitions(t *testing.T) {
	all := []ProductionStatus{
		ProductionStatusPending,
		ProductionStatusInProgress,
		ProductionStatusCompleted,
		ProductionStatusCancelled,
	}
	allowed := map[[2]ProductionStatus]bool{
		{ProductionStatusPending, ProductionStatusInProgress}:   true,
		{ProductionStatusPending, ProductionStatusCancelled}:    true,
		{ProductionStatusInProgress, ProductionStatusCompleted}: true,
		{ProductionStatusInProgress, ProductionStatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]ProductionStatus{from, to}]
			if got := CanTransitionProduction(from, to); got != want {
				t.Errorf("production %s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, entity := range []ProcurementEntity{ProcurementEntityCompoundOrder, ProcurementEntityRequisition} {
		for _, from := range allProcurementStatuses() {
			if !IsClosedProcurementStatus(from) {
				continue
			}
			for _, to := range allProcurementStatuses() {
				if CanTransitionProcurement(entity, from, to) {
					t.Errorf("%s: terminal status %s allows exit to %s", entity, from, to)
				}
			}
		}
	}
	for _, from := range []ProductionStatus{ProductionStatusCompleted, ProductionStatusCancelled} {
		for _, to := range []ProductionStatus{ProductionStatusPending, ProductionStatusInProgress, ProductionStatusCompleted, ProductionStatusCancelled} {
			if CanTransitionProduction(from, to) {
				t.Errorf("production: terminal status %s allows exit to %s", from, to)
			}
		}
	}
}

func requisitionItem(ordered, received string) RequisitionItem {
	return RequisitionItem{
		QuantityKg:         decimal.RequireFromString(ordered),
		QuantityReceivedKg: decimal.RequireFromString(received),
	}
}

func TestDeriveReceiptStatus(t *testing.T) {
	tests := []struct {
		name    string
		current ProcurementStatus
		items   []RequisitionItem
		want    ProcurementStatus
	}{
		{
			name:    "no items keeps current",
			current: ProcurementStatusOrdered,
			items:   nil,
			want:    ProcurementStatusOrdered,
		},
		{
			name:    "no progress keeps current",
			current: ProcurementStatusOrdered,
			items:   []RequisitionItem{requisitionItem("100", "0")},
			want:    ProcurementStatusOrdered,
		},
		{
			name:    "partial fill",
			current: ProcurementStatusOrdered,
			items:   []RequisitionItem{requisitionItem("100", "40")},
			want:    ProcurementStatusPartiallyReceived,
		},
		{
			name:    "full fill",
			current: ProcurementStatusPartiallyReceived,
			items:   []RequisitionItem{requisitionItem("100", "100")},
			want:    ProcurementStatusReceived,
		},
		{
			name:    "over delivery still received",
			current: ProcurementStatusOrdered,
			items:   []RequisitionItem{requisitionItem("100", "105")},
			want:    ProcurementStatusReceived,
		},
		{
			name:    "one item filled one untouched",
			current: ProcurementStatusOrdered,
			items:   []RequisitionItem{requisitionItem("100", "100"), requisitionItem("50", "0")},
			want:    ProcurementStatusPartiallyReceived,
		},
		{
			name:    "over delivery on one item covers shortfall on another",
			current: ProcurementStatusOrdered,
			items:   []RequisitionItem{requisitionItem("100", "150"), requisitionItem("50", "10")},
			want:    ProcurementStatusReceived,
		},
		{
			name:    "totals short despite one item over delivered",
			current: ProcurementStatusOrdered,
			items:   []RequisitionItem{requisitionItem("100", "120"), requisitionItem("100", "20")},
			want:    ProcurementStatusPartiallyReceived,
		},
		{
			name:    "partially received never regresses",
			current: ProcurementStatusPartiallyReceived,
			items:   []RequisitionItem{requisitionItem("100", "0")},
			want:    ProcurementStatusPartiallyReceived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveReceiptStatus(tt.current, tt.items); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveReceiptStatusMonotonicUnderCumulativeDeliveries(t *testing.T) {
	items := []RequisitionItem{requisitionItem("100", "0")}
	status := ProcurementStatusOrdered

	items[0].QuantityReceivedKg = decimal.RequireFromString("40")
	status = DeriveReceiptStatus(status, items)
	if status != ProcurementStatusPartiallyReceived {
		t.Fatalf("after 40/100: got %s, want %s", status, ProcurementStatusPartiallyReceived)
	}

	items[0].QuantityReceivedKg = items[0].QuantityReceivedKg.Add(decimal.RequireFromString("60"))
	status = DeriveReceiptStatus(status, items)
	if status != ProcurementStatusReceived {
		t.Fatalf("after 100/100: got %s, want %s", status, ProcurementStatusReceived)
	}
}
