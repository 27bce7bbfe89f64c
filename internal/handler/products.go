package handler

import (
	"net/http"

	"github.com/hummafaranpilot-stack/metatrim/internal/apierror"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct {
	svc service.ProductService
}

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary      Register a tracked product funnel
// @Description  Generates the webhook token; configure the platform to POST to /v1/webhooks/{type}?token=<token>.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        product body dto.CreateProductRequest true "Product"
// @Success      201 {object} dto.ProductResponse
// @Failure      422 {object} apierror.ValidationError
// @Security     BearerAuth
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not create product"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List tracked products
// @Tags         products
// @Produce      json
// @Success      200 {array} dto.ProductResponse
// @Security     BearerAuth
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not list products"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetActive godoc
// @Summary      Activate or deactivate a tracked product
// @Description  Deactivating immediately rejects webhook deliveries for the product's token.
// @Tags         products
// @Param        id     path  int  true "Product ID"
// @Param        active query bool true "New state"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/products/{id}/active [patch]
func (h *ProductsHandler) SetActive(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	active := c.Query("active") == "true"
	if err := h.svc.SetActive(c.Request.Context(), id, active); err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not update product"))
		return
	}
	c.Status(http.StatusNoContent)
}
