package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/models"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"bitbucket.org/mmdatafocus/rubberstock_backend/workflow"
)

func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "rubberstock_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	ctx := context.Background()
	ctx = utils.SetUserNameInContext(ctx, "Test")
	return ctx
}

func createTestStock(t *testing.T, ctx context.Context, code string, minLevel, reorderPoint string) *models.CompoundStock {
	t.Helper()

	coding, err := models.CreateProductCoding(ctx, &models.NewProductCoding{
		CodingType: models.CodingTypeCompound,
		Code:       code,
		Name:       "Compound " + code,
	})
	if err != nil {
		t.Fatalf("CreateProductCoding: %v", err)
	}

	stock, err := models.CreateCompoundStock(ctx, &models.NewCompoundStock{
		CompoundCodingId: coding.ID,
		MinStockLevelKg:  decimal.RequireFromString(minLevel),
		ReorderPointKg:   decimal.RequireFromString(reorderPoint),
		CostPerKg:        decimal.RequireFromString("3.5"),
		Location:         "Warehouse A",
	})
	if err != nil {
		t.Fatalf("CreateCompoundStock: %v", err)
	}
	return stock
}

func TestStockBalanceMatchesLedger(t *testing.T) {
	ctx := setupIntegration(t)

	stock := createTestStock(t, ctx, "CMP-LEDGER", "0", "0")

	if _, err := models.ReceiveCompound(ctx, stock.ID, &models.ReceiveCompoundInput{
		QuantityKg:  decimal.NewFromInt(500),
		BatchNumber: "B-001",
	}); err != nil {
		t.Fatalf("ReceiveCompound: %v", err)
	}

	// Stock take counted less than the running balance.
	if _, err := models.AdjustCompound(ctx, stock.ID, &models.AdjustCompoundInput{
		NewQuantityKg: decimal.NewFromInt(480),
		Notes:         "monthly count",
	}); err != nil {
		t.Fatalf("AdjustCompound: %v", err)
	}

	product, err := models.CreateRubberProduct(ctx, &models.NewRubberProduct{
		Title:           "Rubber Sheet 10mm",
		SpecificGravity: decimal.RequireFromString("1.2"),
	})
	if err != nil {
		t.Fatalf("CreateRubberProduct: %v", err)
	}

	production, err := models.CreateProduction(ctx, &models.NewProduction{
		ProductId:       product.ID,
		CompoundStockId: stock.ID,
		ThicknessMm:     decimal.NewFromInt(10),
		WidthMm:         decimal.NewFromInt(1000),
		LengthM:         decimal.NewFromInt(6),
		Quantity:        5,
	})
	if err != nil {
		t.Fatalf("CreateProduction: %v", err)
	}
	if _, err := models.StartProduction(ctx, production.ID); err != nil {
		t.Fatalf("StartProduction: %v", err)
	}
	if _, err := models.CompleteProduction(ctx, production.ID); err != nil {
		t.Fatalf("CompleteProduction: %v", err)
	}

	got, err := models.GetCompoundStock(ctx, stock.ID)
	if err != nil {
		t.Fatalf("GetCompoundStock: %v", err)
	}
	// 500 received - 20 written off - 360 consumed = 120.
	if !got.QuantityKg.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("balance: got %s, want 120", got.QuantityKg)
	}

	movements, err := models.GetCompoundMovements(ctx, models.CompoundMovementFilter{
		CompoundStockId: &stock.ID,
	})
	if err != nil {
		t.Fatalf("GetCompoundMovements: %v", err)
	}
	sum := decimal.Zero
	for _, m := range movements {
		sum = sum.Add(m.SignedQuantityKg())
	}
	if !sum.Equal(got.QuantityKg) {
		t.Fatalf("ledger sum %s does not match balance %s", sum, got.QuantityKg)
	}
}

func TestProductionCannotCompleteTwice(t *testing.T) {
	ctx := setupIntegration(t)

	stock := createTestStock(t, ctx, "CMP-DOUBLE", "0", "0")
	if _, err := models.ReceiveCompound(ctx, stock.ID, &models.ReceiveCompoundInput{
		QuantityKg: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("ReceiveCompound: %v", err)
	}

	product, err := models.CreateRubberProduct(ctx, &models.NewRubberProduct{
		Title:           "Rubber Sheet 3mm",
		SpecificGravity: decimal.RequireFromString("1.5"),
	})
	if err != nil {
		t.Fatalf("CreateRubberProduct: %v", err)
	}

	production, err := models.CreateProduction(ctx, &models.NewProduction{
		ProductId:       product.ID,
		CompoundStockId: stock.ID,
		ThicknessMm:     decimal.NewFromInt(3),
		WidthMm:         decimal.NewFromInt(1200),
		LengthM:         decimal.NewFromInt(10),
		Quantity:        10,
	})
	if err != nil {
		t.Fatalf("CreateProduction: %v", err)
	}
	if _, err := models.StartProduction(ctx, production.ID); err != nil {
		t.Fatalf("StartProduction: %v", err)
	}
	if _, err := models.CompleteProduction(ctx, production.ID); err != nil {
		t.Fatalf("CompleteProduction: %v", err)
	}

	if _, err := models.CompleteProduction(ctx, production.ID); !utils.IsInvalidState(err) {
		t.Fatalf("second complete: got %v, want invalid state error", err)
	}

	// 3mm x 1200mm x 10m at SG 1.5 = 54 kg per sheet, 540 kg total.
	got, err := models.GetCompoundStock(ctx, stock.ID)
	if err != nil {
		t.Fatalf("GetCompoundStock: %v", err)
	}
	if !got.QuantityKg.Equal(decimal.RequireFromString("460")) {
		t.Fatalf("balance after single deduction: got %s, want 460", got.QuantityKg)
	}
}

func TestLowStockSweepIsIdempotent(t *testing.T) {
	ctx := setupIntegration(t)
	logger := logrus.New()

	// Stock up before configuring the threshold so the receive path's
	// reorder trigger stays quiet; the sweep must find the gap itself.
	stock := createTestStock(t, ctx, "CMP-SWEEP", "0", "0")
	if _, err := models.ReceiveCompound(ctx, stock.ID, &models.ReceiveCompoundInput{
		QuantityKg: decimal.NewFromInt(40),
	}); err != nil {
		t.Fatalf("ReceiveCompound: %v", err)
	}
	minLevel := decimal.NewFromInt(100)
	if _, err := models.UpdateCompoundStock(ctx, stock.ID, &models.UpdateCompoundStockInput{
		MinStockLevelKg: &minLevel,
	}); err != nil {
		t.Fatalf("UpdateCompoundStock: %v", err)
	}

	created, err := workflow.RunLowStockSweep(ctx, logger)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	var mine []*models.Requisition
	for _, r := range created {
		if len(r.Items) == 1 && r.Items[0].CompoundStockId == stock.ID {
			mine = append(mine, r)
		}
	}
	if len(mine) != 1 {
		t.Fatalf("first sweep: got %d requisitions for stock, want 1", len(mine))
	}
	requisition := mine[0]
	if requisition.Status != models.ProcurementStatusPending {
		t.Fatalf("requisition status: got %s, want PENDING", requisition.Status)
	}
	// 100 min - 40 on hand.
	if !requisition.Items[0].QuantityKg.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("requisition qty: got %s, want 60", requisition.Items[0].QuantityKg)
	}

	again, err := workflow.RunLowStockSweep(ctx, logger)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	for _, r := range again {
		if len(r.Items) == 1 && r.Items[0].CompoundStockId == stock.ID {
			t.Fatalf("second sweep created duplicate requisition %s", r.RequisitionNumber)
		}
	}
}

// openReplenishmentCount counts open compound orders plus pending
// low-stock requisition items targeting one stock record.
func openReplenishmentCount(t *testing.T, ctx context.Context, stockId int) int {
	t.Helper()

	count := 0
	orders, err := models.GetCompoundOrders(ctx, nil)
	if err != nil {
		t.Fatalf("GetCompoundOrders: %v", err)
	}
	for _, order := range orders {
		if order.CompoundStockId == stockId && models.IsOpenProcurementStatus(order.Status) {
			count++
		}
	}

	source := models.RequisitionSourceLowStock
	status := models.ProcurementStatusPending
	requisitions, err := models.GetRequisitions(ctx, models.RequisitionFilter{
		Status:     &status,
		SourceType: &source,
	})
	if err != nil {
		t.Fatalf("GetRequisitions: %v", err)
	}
	for _, r := range requisitions {
		for _, item := range r.Items {
			if item.CompoundStockId == stockId {
				count++
			}
		}
	}
	return count
}

func TestReorderTriggerDedupsAgainstSweep(t *testing.T) {
	ctx := setupIntegration(t)
	logger := logrus.New()

	stock := createTestStock(t, ctx, "CMP-DEDUP", "100", "0")
	if _, err := models.ReceiveCompound(ctx, stock.ID, &models.ReceiveCompoundInput{
		QuantityKg: decimal.NewFromInt(40),
	}); err != nil {
		t.Fatalf("ReceiveCompound: %v", err)
	}

	orders, err := models.GetCompoundOrders(ctx, nil)
	if err != nil {
		t.Fatalf("GetCompoundOrders: %v", err)
	}
	var auto *models.CompoundOrder
	for _, order := range orders {
		if order.CompoundStockId == stock.ID {
			auto = order
		}
	}
	if auto == nil {
		t.Fatalf("receive below minimum created no auto order")
	}
	if auto.IsAutoGenerated == nil || !*auto.IsAutoGenerated {
		t.Fatalf("auto order not flagged as auto-generated")
	}
	// 100 min - 40 on hand.
	if !auto.QuantityKg.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("auto order qty: got %s, want 60", auto.QuantityKg)
	}
	if !strings.Contains(auto.Notes, "Current: 40 kg") || !strings.Contains(auto.Notes, "Threshold: 100 kg") {
		t.Fatalf("auto order note missing observed or threshold quantity: %q", auto.Notes)
	}

	// the open auto order must suppress the sweep for the same stock
	created, err := workflow.RunLowStockSweep(ctx, logger)
	if err != nil {
		t.Fatalf("RunLowStockSweep: %v", err)
	}
	for _, r := range created {
		if len(r.Items) == 1 && r.Items[0].CompoundStockId == stock.ID {
			t.Fatalf("sweep created requisition %s despite open auto order", r.RequisitionNumber)
		}
	}

	// and a further receipt below the threshold must not double up
	if _, err := models.ReceiveCompound(ctx, stock.ID, &models.ReceiveCompoundInput{
		QuantityKg: decimal.NewFromInt(5),
	}); err != nil {
		t.Fatalf("second ReceiveCompound: %v", err)
	}
	if got := openReplenishmentCount(t, ctx, stock.ID); got != 1 {
		t.Fatalf("open replenishments: got %d, want 1", got)
	}
}

func TestConcurrentTriggerAndSweepCreateOneReplenishment(t *testing.T) {
	ctx := setupIntegration(t)
	logger := logrus.New()

	// Stock up before configuring the threshold so setup itself creates
	// no replenishment; the race below is receive-trigger vs sweep.
	stock := createTestStock(t, ctx, "CMP-RACE", "0", "0")
	if _, err := models.ReceiveCompound(ctx, stock.ID, &models.ReceiveCompoundInput{
		QuantityKg: decimal.NewFromInt(40),
	}); err != nil {
		t.Fatalf("ReceiveCompound: %v", err)
	}
	minLevel := decimal.NewFromInt(100)
	if _, err := models.UpdateCompoundStock(ctx, stock.ID, &models.UpdateCompoundStockInput{
		MinStockLevelKg: &minLevel,
	}); err != nil {
		t.Fatalf("UpdateCompoundStock: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := models.ReceiveCompound(ctx, stock.ID, &models.ReceiveCompoundInput{
			QuantityKg: decimal.NewFromInt(5),
		}); err != nil {
			t.Errorf("concurrent ReceiveCompound: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := workflow.RunLowStockSweep(ctx, logger); err != nil {
			t.Errorf("concurrent RunLowStockSweep: %v", err)
		}
	}()
	wg.Wait()

	if got := openReplenishmentCount(t, ctx, stock.ID); got != 1 {
		t.Fatalf("open replenishments after race: got %d, want 1", got)
	}
}

func TestRequisitionPartialThenFullReceipt(t *testing.T) {
	ctx := setupIntegration(t)

	requisition, err := models.CreateManualRequisition(ctx, &models.NewRequisition{
		Notes: "monthly compound order",
		Items: []models.NewRequisitionItem{
			{
				ItemType:     models.RequisitionItemCompound,
				CompoundName: "NBR 60",
				QuantityKg:   decimal.NewFromInt(100),
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateManualRequisition: %v", err)
	}

	if _, err := models.ApproveRequisition(ctx, requisition.ID); err != nil {
		t.Fatalf("ApproveRequisition: %v", err)
	}
	if _, err := models.MarkRequisitionOrdered(ctx, requisition.ID, &models.MarkOrderedInput{}); err != nil {
		t.Fatalf("MarkRequisitionOrdered: %v", err)
	}

	itemId := requisition.Items[0].ID

	partial, err := models.ReceiveRequisitionItems(ctx, requisition.ID, []models.RequisitionItemReceipt{
		{ItemId: itemId, QuantityKg: decimal.NewFromInt(40)},
	})
	if err != nil {
		t.Fatalf("partial receipt: %v", err)
	}
	if partial.Status != models.ProcurementStatusPartiallyReceived {
		t.Fatalf("after partial: got %s, want PARTIALLY_RECEIVED", partial.Status)
	}

	full, err := models.ReceiveRequisitionItems(ctx, requisition.ID, []models.RequisitionItemReceipt{
		{ItemId: itemId, QuantityKg: decimal.NewFromInt(60)},
	})
	if err != nil {
		t.Fatalf("full receipt: %v", err)
	}
	if full.Status != models.ProcurementStatusReceived {
		t.Fatalf("after full: got %s, want RECEIVED", full.Status)
	}
	if full.ReceivedAt == nil {
		t.Fatalf("received_at not stamped")
	}

	if _, err := models.ReceiveRequisitionItems(ctx, requisition.ID, []models.RequisitionItemReceipt{
		{ItemId: itemId, QuantityKg: decimal.NewFromInt(1)},
	}); !utils.IsInvalidState(err) {
		t.Fatalf("receipt on RECEIVED requisition: got %v, want invalid state error", err)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("rubberstock-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("rubberstock-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=rubberstock_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
