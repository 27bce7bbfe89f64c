package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type OrderService interface {
	// IngestNewOrder maps a new-order webhook payload to an order row,
	// derives its financials, and dispatches the async fraud check.
	// Returns (order, created); created is false on a redelivered order_id.
	IngestNewOrder(ctx context.Context, product *model.TrackedProduct, remoteIP string, payload dto.WebhookPayload) (*model.Order, bool, error)
	RecordRecurring(ctx context.Context, product *model.TrackedProduct, payload dto.WebhookPayload) (*model.RecurringCharge, error)
	RecordRefund(ctx context.Context, product *model.TrackedProduct, payload dto.WebhookPayload) (*model.Refund, error)
	RecordCancellation(ctx context.Context, payload dto.WebhookPayload) (*model.Cancellation, error)
	RecordChargeback(ctx context.Context, product *model.TrackedProduct, payload dto.WebhookPayload) (*model.Chargeback, error)
	RecordFulfillment(ctx context.Context, payload dto.WebhookPayload) (*model.Fulfillment, error)

	ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	GetOrder(ctx context.Context, id uint) (*dto.OrderListItem, error)
	DeleteOrder(ctx context.Context, id uint) error
}

type orderService struct {
	orderRepo  repository.OrderRepository
	eventRepo  repository.EventRepository
	pricingSvc PricingService
	normalizer *pricing.Normalizer
	calc       pricing.Calculator
	dispatcher *worker.Dispatcher
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	eventRepo repository.EventRepository,
	pricingSvc PricingService,
	normalizer *pricing.Normalizer,
	calc pricing.Calculator,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		eventRepo:  eventRepo,
		pricingSvc: pricingSvc,
		normalizer: normalizer,
		calc:       calc,
		dispatcher: dispatcher,
	}
}

// ─── New order ───────────────────────────────────────────────────────────────

func (s *orderService) IngestNewOrder(ctx context.Context, product *model.TrackedProduct, remoteIP string, payload dto.WebhookPayload) (*model.Order, bool, error) {
	raw, _ := json.Marshal(payload)

	orderID := payload.Str("orderId", "order_id", "transactionId")
	if orderID == "" {
		orderID = "WH-" + uuid.NewString()
	}

	name := payload.StrPtr("customerName", "customer_name")
	if name == nil {
		full := strings.TrimSpace(payload.Str("firstName") + " " + payload.Str("lastName"))
		if full != "" {
			name = &full
		}
	}

	ip := payload.Str("customerIp", "customer_ip", "ip_address")
	if ip == "" {
		ip = remoteIP
	}

	order := &model.Order{
		OrderID:         orderID,
		TransactionID:   payload.StrPtr("transactionId", "transaction_id"),
		ProductID:       payload.StrPtr("productId", "product_id"),
		ProductName:     payload.StrPtr("productName", "product_name", "productTitle"),
		ProductPrice:    payload.Amount("productPrice", "product_price", "amount"),
		Quantity:        payload.Int([]string{"quantity"}, 1),
		CustomerEmail:   payload.StrPtr("email", "customerEmail", "customer_email"),
		CustomerName:    name,
		CustomerPhone:   payload.StrPtr("phone", "customerPhone", "customer_phone"),
		CustomerCountry: payload.StrPtr("country", "customerCountry"),
		CustomerState:   payload.StrPtr("state", "customerState"),
		CustomerCity:    payload.StrPtr("city", "customerCity"),
		CustomerAddress: payload.StrPtr("address", "customerAddress"),
		CustomerZip:     payload.StrPtr("zip", "postalCode", "customerZip"),
		AffiliateID:     payload.StrPtr("affiliateId", "affiliate_id", "affId"),
		AffiliateName:   payload.StrPtr("affiliateName", "affiliate_name"),
		Commission:      payload.Amount("commission", "affiliateCommission"),
		PaymentMethod:   defaultStr(payload.Str("paymentMethod", "payment_method"), "card"),
		Currency:        defaultStr(payload.Str("currency"), "USD"),
		Status:          "completed",
		IPAddress:       strPtrOrNil(ip),
		RawData:         datatypes.JSON(raw),
	}
	if product != nil {
		order.TrackedProductID = &product.ID
	}

	s.applyFinancials(ctx, order, time.Now())

	created, err := s.orderRepo.Upsert(ctx, order)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Redelivery: return the stored row untouched.
		existing, err := s.orderRepo.FindByOrderID(ctx, orderID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	if s.dispatcher != nil && order.IPAddress != nil {
		if err := s.dispatcher.EnqueueFraudCheck(ctx, worker.FraudJobPayload{OrderID: order.ID}); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("orders: failed to enqueue fraud check")
		}
	}

	return order, true, nil
}

// applyFinancials runs the pricing core over one order in place.
// Orders whose product name yields no SKU, or whose SKU has no rule,
// keep null financial columns.
func (s *orderService) applyFinancials(ctx context.Context, order *model.Order, at time.Time) {
	if order.ProductName == nil {
		return
	}
	sku, ok := s.normalizer.Normalize(*order.ProductName)
	if !ok {
		return
	}
	order.SkuPattern = &sku

	snap, err := s.pricingSvc.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Str("order_id", order.OrderID).Msg("orders: pricing snapshot unavailable")
		return
	}
	rule, ok := snap.Resolve(sku, at)
	if !ok {
		rule, ok = snap.ResolveAnyDate(sku)
	}
	if !ok {
		return
	}

	fin := s.calc.Calculate(order.ProductPrice, rule, order.Commission)
	order.BasePrice = &fin.BasePrice
	order.Taxes = &fin.Taxes
	order.ProcessingFee = &fin.ProcessingFee
	order.AllowanceHold = &fin.AllowanceHold
	order.NetAmount = &fin.NetAmount
	order.IsUpsell = &fin.IsUpsell
}

// ─── Lifecycle events ────────────────────────────────────────────────────────

func (s *orderService) RecordRecurring(ctx context.Context, product *model.TrackedProduct, payload dto.WebhookPayload) (*model.RecurringCharge, error) {
	raw, _ := json.Marshal(payload)

	status := "success"
	if payload.Str("status") == "failed" {
		status = "failed"
	}
	charge := &model.RecurringCharge{
		ChargeID:      defaultStr(payload.Str("chargeId", "charge_id", "transactionId"), "RC-"+uuid.NewString()),
		OrderID:       payload.StrPtr("orderId", "order_id", "originalOrderId"),
		TransactionID: payload.StrPtr("transactionId", "transaction_id"),
		ProductID:     payload.StrPtr("productId", "product_id"),
		ProductName:   payload.StrPtr("productName", "product_name"),
		Amount:        payload.Amount("amount", "chargeAmount"),
		CustomerEmail: payload.StrPtr("email", "customerEmail"),
		CustomerName:  payload.StrPtr("customerName", "customer_name"),
		AffiliateID:   payload.StrPtr("affiliateId", "affiliate_id"),
		Currency:      defaultStr(payload.Str("currency"), "USD"),
		Status:        status,
		RawData:       datatypes.JSON(raw),
	}
	if product != nil {
		charge.TrackedProductID = &product.ID
	}
	return charge, s.eventRepo.InsertRecurringCharge(ctx, charge)
}

func (s *orderService) RecordRefund(ctx context.Context, product *model.TrackedProduct, payload dto.WebhookPayload) (*model.Refund, error) {
	raw, _ := json.Marshal(payload)

	refundType := payload.Str("refundType", "refund_type")
	if refundType == "" {
		refundType = "full"
		if _, partial := payload["partialRefund"]; partial {
			refundType = "partial"
		}
	}
	refund := &model.Refund{
		RefundID:      defaultStr(payload.Str("refundId", "refund_id"), "RF-"+uuid.NewString()),
		OrderID:       payload.StrPtr("orderId", "order_id"),
		TransactionID: payload.StrPtr("transactionId", "transaction_id"),
		Amount:        payload.Amount("amount", "refundAmount"),
		Reason:        defaultStr(payload.Str("reason", "refundReason"), "Customer request"),
		RefundType:    refundType,
		RawData:       datatypes.JSON(raw),
	}
	if product != nil {
		refund.TrackedProductID = &product.ID
	}
	if err := s.eventRepo.InsertRefund(ctx, refund); err != nil {
		return nil, err
	}
	s.markOrderStatus(ctx, refund.OrderID, "refunded")
	return refund, nil
}

func (s *orderService) RecordCancellation(ctx context.Context, payload dto.WebhookPayload) (*model.Cancellation, error) {
	raw, _ := json.Marshal(payload)

	cancel := &model.Cancellation{
		CancelID: defaultStr(payload.Str("cancelId", "cancel_id"), "CN-"+uuid.NewString()),
		OrderID:  payload.StrPtr("orderId", "order_id"),
		Reason:   defaultStr(payload.Str("reason", "cancelReason"), "Customer request"),
		RawData:  datatypes.JSON(raw),
	}
	if err := s.eventRepo.InsertCancellation(ctx, cancel); err != nil {
		return nil, err
	}
	s.markOrderStatus(ctx, cancel.OrderID, "cancelled")
	return cancel, nil
}

func (s *orderService) RecordChargeback(ctx context.Context, product *model.TrackedProduct, payload dto.WebhookPayload) (*model.Chargeback, error) {
	raw, _ := json.Marshal(payload)

	cb := &model.Chargeback{
		ChargebackID:  defaultStr(payload.Str("chargebackId", "chargeback_id"), "CB-"+uuid.NewString()),
		OrderID:       payload.StrPtr("orderId", "order_id"),
		TransactionID: payload.StrPtr("transactionId", "transaction_id"),
		Amount:        payload.Amount("amount", "chargebackAmount"),
		Reason:        defaultStr(payload.Str("reason", "chargebackReason"), "Chargeback filed"),
		RawData:       datatypes.JSON(raw),
	}
	if product != nil {
		cb.TrackedProductID = &product.ID
	}
	if err := s.eventRepo.InsertChargeback(ctx, cb); err != nil {
		return nil, err
	}
	s.markOrderStatus(ctx, cb.OrderID, "chargeback")
	return cb, nil
}

func (s *orderService) RecordFulfillment(ctx context.Context, payload dto.WebhookPayload) (*model.Fulfillment, error) {
	raw, _ := json.Marshal(payload)

	var shippedAt *time.Time
	if v := payload.Str("shippedAt", "shipped_at"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			shippedAt = &t
		}
	}
	if shippedAt == nil {
		now := time.Now()
		shippedAt = &now
	}

	f := &model.Fulfillment{
		FulfillmentID:  defaultStr(payload.Str("fulfillmentId", "fulfillment_id"), "FL-"+uuid.NewString()),
		OrderID:        payload.StrPtr("orderId", "order_id"),
		TrackingNumber: payload.StrPtr("trackingNumber", "tracking_number"),
		Carrier:        payload.StrPtr("carrier", "shippingCarrier"),
		ShippedAt:      shippedAt,
		RawData:        datatypes.JSON(raw),
	}
	if err := s.eventRepo.InsertFulfillment(ctx, f); err != nil {
		return nil, err
	}
	s.markOrderStatus(ctx, f.OrderID, "fulfilled")
	return f, nil
}

// markOrderStatus mirrors a lifecycle event onto the order row when we
// have it. Events for unknown orders (imports, cleared test data) are
// kept without complaint.
func (s *orderService) markOrderStatus(ctx context.Context, orderID *string, status string) {
	if orderID == nil || *orderID == "" {
		return
	}
	if err := s.orderRepo.UpdateStatus(ctx, *orderID, status); err != nil && !repository.IsNotFound(err) {
		log.Warn().Err(err).Str("order_id", *orderID).Str("status", status).Msg("orders: status update failed")
	}
}

// ─── Queries ─────────────────────────────────────────────────────────────────

func (s *orderService) ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderListItem, 0, len(orders))
	for i := range orders {
		items = append(items, orderToListItem(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*dto.OrderListItem, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item := orderToListItem(order)
	return &item, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.orderRepo.Delete(ctx, id)
}

func orderToListItem(o *model.Order) dto.OrderListItem {
	return dto.OrderListItem{
		ID:            o.ID,
		OrderID:       o.OrderID,
		ProductName:   derefStr(o.ProductName),
		SkuPattern:    o.SkuPattern,
		ProductPrice:  o.ProductPrice,
		Quantity:      o.Quantity,
		Commission:    o.Commission,
		BasePrice:     o.BasePrice,
		Taxes:         o.Taxes,
		ProcessingFee: o.ProcessingFee,
		AllowanceHold: o.AllowanceHold,
		NetAmount:     o.NetAmount,
		IsUpsell:      o.IsUpsell,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status,
		IPAddress:     o.IPAddress,
		IPFraudScore:  o.IPFraudScore,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

// ─── Small helpers ───────────────────────────────────────────────────────────

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
