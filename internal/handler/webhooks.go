package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hummafaranpilot-stack/metatrim/internal/apierror"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Webhook event types accepted on POST /v1/webhooks/:type.
const (
	EventNewOrder   = "new-order"
	EventRecurring  = "recurring"
	EventRefund     = "refund"
	EventCancel     = "cancel"
	EventChargeback = "chargeback"
	EventFulfilled  = "fulfilled"
	EventTest       = "test"
)

type WebhooksHandler struct {
	orders   service.OrderService
	products service.ProductService
	logRepo  repository.WebhookLogRepository
}

func NewWebhooksHandler(orders service.OrderService, products service.ProductService, logRepo repository.WebhookLogRepository) *WebhooksHandler {
	return &WebhooksHandler{orders: orders, products: products, logRepo: logRepo}
}

// Receive godoc
// @Summary      Receive a sales platform webhook
// @Description  Ingests one platform event. The token query parameter identifies the tracked product funnel; payload field names are accepted in both camelCase and snake_case. Redeliveries are idempotent.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        type  path  string true "Event type" Enums(new-order, recurring, refund, cancel, chargeback, fulfilled, test)
// @Param        token query string true "Product webhook token"
// @Success      200 {object} dto.WebhookAck
// @Failure      401 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/webhooks/{type} [post]
func (h *WebhooksHandler) Receive(c *gin.Context) {
	eventType := c.Param("type")
	ctx := c.Request.Context()

	product, err := h.products.FindByToken(ctx, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("unknown webhook token"))
		return
	}

	var payload dto.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logDelivery(c, eventType, &product.ID, payload, http.StatusBadRequest, err)
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return
	}

	var (
		ack        dto.WebhookAck
		processErr error
	)

	switch eventType {
	case EventNewOrder:
		order, created, err := h.orders.IngestNewOrder(ctx, product, c.ClientIP(), payload)
		processErr = err
		if err == nil {
			msg := "Order received and processed"
			if !created {
				msg = "Order already recorded"
			}
			ack = dto.WebhookAck{Success: true, Message: msg, Ref: order.OrderID}
		}
	case EventRecurring:
		charge, err := h.orders.RecordRecurring(ctx, product, payload)
		processErr = err
		if err == nil {
			ack = dto.WebhookAck{Success: true, Message: "Recurring charge received and processed", Ref: charge.ChargeID}
		}
	case EventRefund:
		refund, err := h.orders.RecordRefund(ctx, product, payload)
		processErr = err
		if err == nil {
			ack = dto.WebhookAck{Success: true, Message: "Refund received and processed", Ref: refund.RefundID}
		}
	case EventCancel:
		cancel, err := h.orders.RecordCancellation(ctx, payload)
		processErr = err
		if err == nil {
			ack = dto.WebhookAck{Success: true, Message: "Cancellation received and processed", Ref: cancel.CancelID}
		}
	case EventChargeback:
		cb, err := h.orders.RecordChargeback(ctx, product, payload)
		processErr = err
		if err == nil {
			ack = dto.WebhookAck{Success: true, Message: "Chargeback received and processed", Ref: cb.ChargebackID}
		}
	case EventFulfilled:
		f, err := h.orders.RecordFulfillment(ctx, payload)
		processErr = err
		if err == nil {
			ack = dto.WebhookAck{Success: true, Message: "Fulfillment received and processed", Ref: f.FulfillmentID}
		}
	case EventTest:
		// Echo endpoint for wiring checks in the platform dashboard.
		ack = dto.WebhookAck{Success: true, Message: "Test webhook received"}
	default:
		c.JSON(http.StatusNotFound, apierror.New("unknown event type"))
		return
	}

	if processErr != nil {
		h.logDelivery(c, eventType, &product.ID, payload, http.StatusInternalServerError, processErr)
		c.JSON(http.StatusInternalServerError, dto.WebhookAck{Success: false, Message: "Error processing event"})
		return
	}

	h.logDelivery(c, eventType, &product.ID, payload, http.StatusOK, nil)
	c.JSON(http.StatusOK, ack)
}

// Logs godoc
// @Summary      Recent webhook deliveries
// @Description  Raw delivery log for debugging platform integration issues, newest first.
// @Tags         webhooks
// @Produce      json
// @Param        eventType query string false "Filter by event type"
// @Param        limit     query int    false "Max rows" default(50)
// @Success      200 {array} model.WebhookLog
// @Security     BearerAuth
// @Router       /v1/webhooks/logs [get]
func (h *WebhooksHandler) Logs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	logs, err := h.logRepo.List(c.Request.Context(), c.Query("eventType"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not list webhook logs"))
		return
	}
	c.JSON(http.StatusOK, logs)
}

// logDelivery records the delivery for replay; failures here must never
// break the webhook response.
func (h *WebhooksHandler) logDelivery(c *gin.Context, eventType string, productID *uint, payload dto.WebhookPayload, status int, cause error) {
	raw, _ := json.Marshal(payload)
	entry := &model.WebhookLog{
		EventType:  eventType,
		ProductID:  productID,
		RemoteIP:   c.ClientIP(),
		Payload:    datatypes.JSON(raw),
		StatusCode: status,
	}
	if cause != nil {
		msg := cause.Error()
		entry.Error = &msg
	}
	if err := h.logRepo.Insert(c.Request.Context(), entry); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("webhooks: delivery log failed")
	}
}
