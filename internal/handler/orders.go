package handler

import (
	"net/http"

	"github.com/hummafaranpilot-stack/metatrim/internal/apierror"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct {
	orders service.OrderService
	imp    service.ImportService
	recalc service.RecalcService
}

func NewOrdersHandler(orders service.OrderService, imp service.ImportService, recalc service.RecalcService) *OrdersHandler {
	return &OrdersHandler{orders: orders, imp: imp, recalc: recalc}
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        status    query string false "Status filter" Enums(completed, refunded, cancelled, chargeback, fulfilled, all)
// @Param        startDate query string false "From date (YYYY-MM-DD)"
// @Param        endDate   query string false "To date (YYYY-MM-DD), inclusive"
// @Param        productId query string false "Platform product id"
// @Param        page      query int    false "Page, 1-based" default(1)
// @Param        limit     query int    false "Page size" default(100) maximum(500)
// @Success      200 {object} dto.OrderListResponse
// @Failure      422 {object} apierror.ValidationError
// @Security     BearerAuth
// @Router       /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not list orders"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one order
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order row ID"
// @Success      200 {object} dto.OrderListItem
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not fetch order"))
		return
	}
	c.JSON(http.StatusOK, order)
}

// Delete godoc
// @Summary      Delete an order
// @Tags         orders
// @Param        id path int true "Order row ID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/orders/{id} [delete]
func (h *OrdersHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not delete order"))
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportCSV godoc
// @Summary      Import orders from a platform CSV export
// @Description  Accepts a multipart upload under the "file" field. Rows already present (by order id) count as duplicates; test transactions are skipped. Financials are recalculated after a successful import.
// @Tags         orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV export"
// @Success      200 {object} dto.ImportResult
// @Failure      400 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/orders/import-csv [post]
func (h *OrdersHandler) ImportCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("file field is required"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("could not read upload"))
		return
	}
	defer f.Close()

	result, err := h.imp.ImportCSV(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recalculate godoc
// @Summary      Recalculate derived financials for every order
// @Description  Re-resolves each order's SKU against the current rule set at the order's creation date and rewrites base price, taxes, fees and net amount.
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.RecalculateResponse
// @Security     BearerAuth
// @Router       /v1/orders/recalculate [post]
func (h *OrdersHandler) Recalculate(c *gin.Context) {
	result, err := h.recalc.Recalculate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("recalculation failed"))
		return
	}
	c.JSON(http.StatusOK, result)
}
