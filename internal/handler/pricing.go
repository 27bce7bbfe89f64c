package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/apierror"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	svc service.PricingService
}

func NewPricingHandler(svc service.PricingService) *PricingHandler {
	return &PricingHandler{svc: svc}
}

// Create godoc
// @Summary      Create a pricing rule
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        rule body dto.CreatePricingRuleRequest true "Rule"
// @Success      201 {object} dto.PricingRuleResponse
// @Failure      422 {object} apierror.ValidationError
// @Security     BearerAuth
// @Router       /v1/pricing [post]
func (h *PricingHandler) Create(c *gin.Context) {
	var req dto.CreatePricingRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRule(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not create pricing rule"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List pricing rules
// @Tags         pricing
// @Produce      json
// @Param        productType     query string false "Filter by product type" Enums(metatrim, prostaprime)
// @Param        includeInactive query bool   false "Include deactivated rules"
// @Success      200 {array} dto.PricingRuleResponse
// @Security     BearerAuth
// @Router       /v1/pricing [get]
func (h *PricingHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	rules, err := h.svc.ListRules(c.Request.Context(), c.Query("productType"), includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not list pricing rules"))
		return
	}
	c.JSON(http.StatusOK, rules)
}

// Get godoc
// @Summary      Fetch one pricing rule
// @Tags         pricing
// @Produce      json
// @Param        id path int true "Rule ID"
// @Success      200 {object} dto.PricingRuleResponse
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/pricing/{id} [get]
func (h *PricingHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetRule(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("pricing rule not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not fetch pricing rule"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a pricing rule
// @Description  Partial update; only the fields present in the body change.
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        id   path int true "Rule ID"
// @Param        rule body dto.UpdatePricingRuleRequest true "Fields to change"
// @Success      200 {object} dto.PricingRuleResponse
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/pricing/{id} [put]
func (h *PricingHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.UpdatePricingRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("pricing rule not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not update pricing rule"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetActive godoc
// @Summary      Activate or deactivate a pricing rule
// @Tags         pricing
// @Produce      json
// @Param        id     path  int  true "Rule ID"
// @Param        active query bool true "New state"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/pricing/{id}/active [patch]
func (h *PricingHandler) SetActive(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	active := c.Query("active") == "true"
	if err := h.svc.SetRuleActive(c.Request.Context(), id, active); err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("pricing rule not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not update pricing rule"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary      Delete a pricing rule
// @Tags         pricing
// @Param        id path int true "Rule ID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/pricing/{id} [delete]
func (h *PricingHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteRule(c.Request.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("pricing rule not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not delete pricing rule"))
		return
	}
	c.Status(http.StatusNoContent)
}

// BasePrice godoc
// @Summary      Resolve the base price for a SKU at a date
// @Description  Applies date-window resolution; when no window covers the date the newest rule for the pattern is used and flagged as a fallback.
// @Tags         pricing
// @Produce      json
// @Param        sku  query string true  "SKU pattern, e.g. met2"
// @Param        date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} dto.BasePriceResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/pricing/base-price [get]
func (h *PricingHandler) BasePrice(c *gin.Context) {
	sku := c.Query("sku")
	if sku == "" {
		c.JSON(http.StatusBadRequest, apierror.New("sku is required"))
		return
	}
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	resp, err := h.svc.BasePrice(c.Request.Context(), sku, date)
	if err != nil {
		if errors.Is(err, service.ErrNoPriceRule) {
			c.JSON(http.StatusNotFound, apierror.New("no pricing rule matches the given SKU"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("could not resolve base price"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// paramID parses the :id path parameter, answering 400 itself on failure.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return 0, false
	}
	return uint(id), true
}
