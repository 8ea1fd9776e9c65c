package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	loyaltyapp "github.com/loyalty/backend/internal/application/loyalty"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *loyaltyapp.CustomerService
	purchaseService *loyaltyapp.PurchaseService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *loyaltyapp.CustomerService, purchaseService *loyaltyapp.PurchaseService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		purchaseService: purchaseService,
	}
}

// Create enrolls a new loyalty customer and issues a barcode
func (h *CustomerHandler) Create(c *gin.Context) {
	var req loyaltyapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns customers ordered by enrollment date, newest first
func (h *CustomerHandler) List(c *gin.Context) {
	var filter loyaltyapp.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customers, total, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	h.SuccessWithMeta(c, customers, total, page, pageSize)
}

// GetByID returns a single customer by ID
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	resp, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByBarcode looks up a customer by loyalty barcode
func (h *CustomerHandler) GetByBarcode(c *gin.Context) {
	resp, err := h.customerService.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update modifies a customer's contact details
func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var req loyaltyapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListPurchases returns a customer's purchase history, newest first
func (h *CustomerHandler) ListPurchases(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	purchases, err := h.purchaseService.ListByCustomer(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, purchases)
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.GET("/:id", h.GetByID)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
		customers.GET("/:id/purchases", h.ListPurchases)
		customers.GET("/barcode/:barcode", h.GetByBarcode)
	}
}
