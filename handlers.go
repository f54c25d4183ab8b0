package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/models"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
	"bitbucket.org/mmdatafocus/rubberstock_backend/workflow"
)

// respondError maps the domain error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case utils.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsInvalidState(err), utils.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case utils.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func registerRoutes(r *gin.Engine) {
	// reference data
	r.POST("/codings", createProductCodingHandler)
	r.GET("/codings", listProductCodingsHandler)
	r.PUT("/codings/:id", updateProductCodingHandler)
	r.DELETE("/codings/:id", deleteProductCodingHandler)

	r.POST("/products", createRubberProductHandler)
	r.GET("/products", listRubberProductsHandler)
	r.PUT("/products/:id", updateRubberProductHandler)
	r.DELETE("/products/:id", deleteRubberProductHandler)

	r.POST("/locations", createStockLocationHandler)
	r.GET("/locations", listStockLocationsHandler)
	r.PUT("/locations/:id", updateStockLocationHandler)
	r.DELETE("/locations/:id", deleteStockLocationHandler)

	r.POST("/suppliers", createSupplierHandler)
	r.GET("/suppliers", listSuppliersHandler)
	r.PUT("/suppliers/:id", updateSupplierHandler)
	r.DELETE("/suppliers/:id", deleteSupplierHandler)

	// stock
	r.POST("/stocks", createStockHandler)
	r.POST("/stocks/opening", createOpeningStockHandler)
	r.POST("/stocks/opening/import", importOpeningStockHandler)
	r.GET("/stocks", listStocksHandler)
	r.GET("/stocks/low", listLowStocksHandler)
	r.GET("/stocks/:id", getStockHandler)
	r.PUT("/stocks/:id", updateStockHandler)
	r.DELETE("/stocks/:id", deleteStockHandler)
	r.POST("/stocks/:id/receive", receiveStockHandler)
	r.POST("/stocks/:id/adjust", adjustStockHandler)

	// ledger
	r.GET("/movements", listMovementsHandler)

	// production
	r.POST("/productions", createProductionHandler)
	r.POST("/productions/calculate", calculateProductionHandler)
	r.GET("/productions", listProductionsHandler)
	r.GET("/productions/:id", getProductionHandler)
	r.POST("/productions/:id/start", startProductionHandler)
	r.POST("/productions/:id/complete", completeProductionHandler)
	r.POST("/productions/:id/cancel", cancelProductionHandler)

	// compound orders
	r.POST("/orders", createOrderHandler)
	r.GET("/orders", listOrdersHandler)
	r.GET("/orders/:id", getOrderHandler)
	r.PUT("/orders/:id/status", updateOrderStatusHandler)
	r.POST("/orders/:id/receive", receiveOrderHandler)

	// requisitions
	r.POST("/requisitions", createManualRequisitionHandler)
	r.POST("/requisitions/external-po", createExternalPoRequisitionHandler)
	r.GET("/requisitions", listRequisitionsHandler)
	r.GET("/requisitions/pending", listPendingRequisitionsHandler)
	r.GET("/requisitions/:id", getRequisitionHandler)
	r.POST("/requisitions/:id/approve", approveRequisitionHandler)
	r.POST("/requisitions/:id/reject", rejectRequisitionHandler)
	r.POST("/requisitions/:id/mark-ordered", markRequisitionOrderedHandler)
	r.POST("/requisitions/:id/receive", receiveRequisitionItemsHandler)
	r.POST("/requisitions/:id/cancel", cancelRequisitionHandler)
	r.POST("/requisitions/sweep", runLowStockSweepHandler)
}

/* reference data */

func createProductCodingHandler(c *gin.Context) {
	var input models.NewProductCoding
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coding, err := models.CreateProductCoding(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coding)
}

func listProductCodingsHandler(c *gin.Context) {
	var codingType *models.CodingType
	if v := c.Query("coding_type"); v != "" {
		t := models.CodingType(v)
		if !t.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coding_type"})
			return
		}
		codingType = &t
	}
	codings, err := models.GetProductCodings(c.Request.Context(), codingType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, codings)
}

func updateProductCodingHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewProductCoding
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coding, err := models.UpdateProductCoding(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coding)
}

func deleteProductCodingHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteProductCoding(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func createRubberProductHandler(c *gin.Context) {
	var input models.NewRubberProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := models.CreateRubberProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func listRubberProductsHandler(c *gin.Context) {
	products, err := models.GetRubberProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func updateRubberProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewRubberProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := models.UpdateRubberProduct(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func deleteRubberProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteRubberProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func createStockLocationHandler(c *gin.Context) {
	var input models.NewStockLocation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	location, err := models.CreateStockLocation(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

func listStockLocationsHandler(c *gin.Context) {
	locations, err := models.GetStockLocations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func updateStockLocationHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewStockLocation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	location, err := models.UpdateStockLocation(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

func deleteStockLocationHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteStockLocation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func listSuppliersHandler(c *gin.Context) {
	suppliers, err := models.GetSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func updateSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func deleteSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* stock */

func createStockHandler(c *gin.Context) {
	var input models.NewCompoundStock
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stock, err := models.CreateCompoundStock(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}

func createOpeningStockHandler(c *gin.Context) {
	var input models.NewCompoundOpeningStock
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stock, err := models.CreateCompoundOpeningStock(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}

func importOpeningStockHandler(c *gin.Context) {
	var rows []models.OpeningStockRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := models.ImportCompoundOpeningStock(c.Request.Context(), rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func listStocksHandler(c *gin.Context) {
	stocks, err := models.GetCompoundStocks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func listLowStocksHandler(c *gin.Context) {
	stocks, err := models.LowStockCompounds(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func getStockHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	stock, err := models.GetCompoundStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

func updateStockHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.UpdateCompoundStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stock, err := models.UpdateCompoundStock(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

func deleteStockHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteCompoundStock(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func receiveStockHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.ReceiveCompoundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stock, err := models.ReceiveCompound(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

func adjustStockHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.AdjustCompoundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stock, err := models.AdjustCompound(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

/* ledger */

func listMovementsHandler(c *gin.Context) {
	var filter models.CompoundMovementFilter
	if v := c.Query("stock_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock_id"})
			return
		}
		filter.CompoundStockId = &id
	}
	if v := c.Query("movement_type"); v != "" {
		t, err := models.ParseMovementType(v)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.MovementType = &t
	}
	if v := c.Query("reference_type"); v != "" {
		t, err := models.ParseMovementReferenceType(v)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.ReferenceType = &t
	}
	movements, err := models.GetCompoundMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

/* production */

func createProductionHandler(c *gin.Context) {
	var input models.NewProduction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	production, err := models.CreateProduction(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, production)
}

func calculateProductionHandler(c *gin.Context) {
	var input models.CompoundRequirementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requirement, err := models.CalculateCompoundRequired(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requirement)
}

func listProductionsHandler(c *gin.Context) {
	var status *models.ProductionStatus
	if v := c.Query("status"); v != "" {
		s := models.ProductionStatus(v)
		if !s.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &s
	}
	productions, err := models.GetProductions(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productions)
}

func getProductionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	production, err := models.GetProduction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, production)
}

func startProductionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	production, err := models.StartProduction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, production)
}

func completeProductionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	production, err := models.CompleteProduction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, production)
}

func cancelProductionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	production, err := models.CancelProduction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, production)
}

/* compound orders */

func createOrderHandler(c *gin.Context) {
	var input models.NewCompoundOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := models.CreateCompoundOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func listOrdersHandler(c *gin.Context) {
	var status *models.ProcurementStatus
	if v := c.Query("status"); v != "" {
		s, err := models.ParseProcurementStatus(v)
		if err != nil {
			respondError(c, err)
			return
		}
		status = &s
	}
	orders, err := models.GetCompoundOrders(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func getOrderHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	order, err := models.GetCompoundOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateOrderStatusHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := models.ParseProcurementStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	order, err := models.UpdateCompoundOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func receiveOrderHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.ReceiveCompoundOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := models.ReceiveCompoundOrder(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

/* requisitions */

func createManualRequisitionHandler(c *gin.Context) {
	var input models.NewRequisition
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requisition, err := models.CreateManualRequisition(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, requisition)
}

func createExternalPoRequisitionHandler(c *gin.Context) {
	var input models.NewRequisition
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requisition, err := models.CreateExternalPoRequisition(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, requisition)
}

func listRequisitionsHandler(c *gin.Context) {
	var filter models.RequisitionFilter
	if v := c.Query("status"); v != "" {
		s, err := models.ParseProcurementStatus(v)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Status = &s
	}
	if v := c.Query("source_type"); v != "" {
		s := models.RequisitionSourceType(v)
		if !s.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source_type"})
			return
		}
		filter.SourceType = &s
	}
	requisitions, err := models.GetRequisitions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisitions)
}

func listPendingRequisitionsHandler(c *gin.Context) {
	requisitions, err := models.PendingRequisitions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisitions)
}

func getRequisitionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	requisition, err := models.GetRequisition(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

func approveRequisitionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	requisition, err := models.ApproveRequisition(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

type rejectRequisitionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func rejectRequisitionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req rejectRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requisition, err := models.RejectRequisition(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

func markRequisitionOrderedHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.MarkOrderedInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requisition, err := models.MarkRequisitionOrdered(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

type receiveRequisitionItemsRequest struct {
	Receipts []models.RequisitionItemReceipt `json:"receipts" binding:"required"`
}

func receiveRequisitionItemsHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req receiveRequisitionItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requisition, err := models.ReceiveRequisitionItems(c.Request.Context(), id, req.Receipts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

func cancelRequisitionHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	requisition, err := models.CancelRequisition(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

func runLowStockSweepHandler(c *gin.Context) {
	created, err := workflow.RunLowStockSweep(c.Request.Context(), config.GetLogger())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"created_count": len(created),
		"requisitions":  created,
	})
}
