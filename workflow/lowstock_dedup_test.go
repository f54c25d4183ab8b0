package workflow

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/rubberstock_backend/models"
)

// NOTE: These tests are intentionally DB-free. They validate the intended
// replenishment semantics:
// - concurrent reorder triggers for the same stock create at most one request
// - independent stocks replenish independently
//
// Full DB integration coverage lives in the models regression tests, which
// require docker.

type fakeReplenisher struct {
	muByStock map[int]*sync.Mutex
	mu        sync.Mutex
	open      map[int]bool
	created   map[int]int
}

func newFakeReplenisher() *fakeReplenisher {
	return &fakeReplenisher{
		muByStock: map[int]*sync.Mutex{},
		open:      map[int]bool{},
		created:   map[int]int{},
	}
}

// trigger mirrors the check-then-create window: acquire the per-stock lock
// (models AcquireStockReorderLock), re-check thresholds, dedup against open
// replenishments (models HasOpenReplenishment), then create.
func (f *fakeReplenisher) trigger(stockId int, qty, minLevel, reorderPoint decimal.Decimal) {
	f.mu.Lock()
	sm := f.muByStock[stockId]
	if sm == nil {
		sm = &sync.Mutex{}
		f.muByStock[stockId] = sm
	}
	f.mu.Unlock()

	sm.Lock()
	defer sm.Unlock()

	if !models.NeedsReorder(qty, minLevel, reorderPoint) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open[stockId] {
		return
	}
	f.open[stockId] = true
	f.created[stockId]++
}

func TestConcurrentTriggersCreateOneReplenishment(t *testing.T) {
	f := newFakeReplenisher()

	qty := decimal.NewFromInt(40)
	minLevel := decimal.NewFromInt(100)
	reorderPoint := decimal.NewFromInt(150)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.trigger(1, qty, minLevel, reorderPoint)
		}()
	}
	wg.Wait()

	if f.created[1] != 1 {
		t.Fatalf("expected exactly 1 replenishment for stock 1, got %d", f.created[1])
	}
}

func TestIndependentStocksReplenishIndependently(t *testing.T) {
	f := newFakeReplenisher()

	qty := decimal.NewFromInt(10)
	minLevel := decimal.NewFromInt(100)
	reorderPoint := decimal.Zero

	var wg sync.WaitGroup
	for stockId := 1; stockId <= 5; stockId++ {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				f.trigger(id, qty, minLevel, reorderPoint)
			}(stockId)
		}
	}
	wg.Wait()

	for stockId := 1; stockId <= 5; stockId++ {
		if f.created[stockId] != 1 {
			t.Fatalf("stock %d: expected exactly 1 replenishment, got %d", stockId, f.created[stockId])
		}
	}
}

func TestHealthyStockNeverTriggers(t *testing.T) {
	f := newFakeReplenisher()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.trigger(1, decimal.NewFromInt(500), decimal.NewFromInt(100), decimal.NewFromInt(150))
		}()
	}
	wg.Wait()

	if f.created[1] != 0 {
		t.Fatalf("expected no replenishments for healthy stock, got %d", f.created[1])
	}
}
