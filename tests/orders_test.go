package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubOrderRepo is an in-memory OrderRepository for testing.
type stubOrderRepo struct {
	orders map[string]*model.Order // keyed by order_id
	nextID uint
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*model.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	r.nextID++
	o.ID = r.nextID
	r.orders[o.OrderID] = o
	return nil
}

func (r *stubOrderRepo) Upsert(_ context.Context, o *model.Order) (bool, error) {
	if _, ok := r.orders[o.OrderID]; ok {
		return false, nil
	}
	r.nextID++
	o.ID = r.nextID
	r.orders[o.OrderID] = o
	return true, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uint) (*model.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) FindByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, orderID string, status string) error {
	o, ok := r.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) UpdateFinancials(_ context.Context, id uint, fields map[string]any) error {
	o, err := r.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	if v, ok := fields["sku_pattern"].(string); ok {
		o.SkuPattern = &v
	}
	if v, ok := fields["base_price"].(decimal.Decimal); ok {
		o.BasePrice = &v
	}
	if v, ok := fields["net_amount"].(decimal.Decimal); ok {
		o.NetAmount = &v
	}
	return nil
}

func (r *stubOrderRepo) UpdateFraud(_ context.Context, id uint, fields map[string]any) error {
	o, err := r.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	if v, ok := fields["ip_analyzed"].(bool); ok {
		o.IPAnalyzed = v
	}
	return nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if filter.Status != "" && filter.Status != "all" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) FindBatch(_ context.Context, afterID uint, limit int) ([]model.Order, error) {
	var out []model.Order
	for id := afterID + 1; id <= r.nextID && len(out) < limit; id++ {
		for _, o := range r.orders {
			if o.ID == id {
				out = append(out, *o)
			}
		}
	}
	return out, nil
}

func (r *stubOrderRepo) FindUnanalyzed(_ context.Context, limit int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if !o.IPAnalyzed && o.IPAddress != nil && len(out) < limit {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id uint) error {
	for key, o := range r.orders {
		if o.ID == id {
			delete(r.orders, key)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

// stubEventRepo records inserted lifecycle events, enforcing the
// idempotency key the way the conflict clause does.
type stubEventRepo struct {
	recurring map[string]*model.RecurringCharge
	refunds   map[string]*model.Refund
	backs     map[string]*model.Chargeback
	cancels   map[string]*model.Cancellation
	shipments map[string]*model.Fulfillment
	failNext  bool
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{
		recurring: make(map[string]*model.RecurringCharge),
		refunds:   make(map[string]*model.Refund),
		backs:     make(map[string]*model.Chargeback),
		cancels:   make(map[string]*model.Cancellation),
		shipments: make(map[string]*model.Fulfillment),
	}
}

func (r *stubEventRepo) InsertRecurringCharge(_ context.Context, c *model.RecurringCharge) error {
	if r.failNext {
		return errors.New("boom")
	}
	if _, ok := r.recurring[c.ChargeID]; !ok {
		r.recurring[c.ChargeID] = c
	}
	return nil
}

func (r *stubEventRepo) InsertRefund(_ context.Context, rf *model.Refund) error {
	if r.failNext {
		return errors.New("boom")
	}
	if _, ok := r.refunds[rf.RefundID]; !ok {
		r.refunds[rf.RefundID] = rf
	}
	return nil
}

func (r *stubEventRepo) InsertChargeback(_ context.Context, cb *model.Chargeback) error {
	if _, ok := r.backs[cb.ChargebackID]; !ok {
		r.backs[cb.ChargebackID] = cb
	}
	return nil
}

func (r *stubEventRepo) InsertCancellation(_ context.Context, cn *model.Cancellation) error {
	if _, ok := r.cancels[cn.CancelID]; !ok {
		r.cancels[cn.CancelID] = cn
	}
	return nil
}

func (r *stubEventRepo) InsertFulfillment(_ context.Context, f *model.Fulfillment) error {
	if _, ok := r.shipments[f.FulfillmentID]; !ok {
		r.shipments[f.FulfillmentID] = f
	}
	return nil
}

func (r *stubEventRepo) DB() *gorm.DB { return nil }

// ── Helpers ───────────────────────────────────────────────────────────────────

func testProduct() *model.TrackedProduct {
	return &model.TrackedProduct{ID: 1, Name: "Meta Trim BHB", Slug: "metatrim", Token: "tok", Network: "buygoods", IsActive: true}
}

func newOrderService(orderRepo *stubOrderRepo, eventRepo *stubEventRepo, rules []model.PricingRule) service.OrderService {
	pricingSvc := service.NewPricingService(newStubPricingRepo(rules...), nil)
	return service.NewOrderService(orderRepo, eventRepo, pricingSvc, pricing.NewNormalizer(), pricing.NewCalculator(), nil)
}

func twoBottleRule() model.PricingRule {
	return model.PricingRule{
		ID:          1,
		ProductType: model.ProductTypeMetaTrim,
		SkuPattern:  "met2",
		ProductName: "Meta Trim BHB 2 Bottle",
		BottleCount: 2,
		BasePrice:   decimal.RequireFromString("157.99"),
		Shipping:    decimal.RequireFromString("19.99"),
		IsActive:    true,
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestIngestNewOrder_MapsPayloadAndDerivesFinancials(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newOrderService(orderRepo, newStubEventRepo(), []model.PricingRule{twoBottleRule()})

	payload := dto.WebhookPayload{
		"orderId":      "BG-1001",
		"productName":  "Meta Trim BHB 2 Bottle",
		"productPrice": 191.16,
		"commission":   "10.00",
		"email":        "jane@example.com",
		"firstName":    "Jane",
		"lastName":     "Doe",
		"customerIp":   "203.0.113.9",
	}

	order, created, err := svc.IngestNewOrder(context.Background(), testProduct(), "198.51.100.1", payload)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "BG-1001", order.OrderID)
	require.NotNil(t, order.CustomerName)
	assert.Equal(t, "Jane Doe", *order.CustomerName)
	require.NotNil(t, order.IPAddress)
	assert.Equal(t, "203.0.113.9", *order.IPAddress) // payload IP wins over remote addr
	assert.Equal(t, "completed", order.Status)

	require.NotNil(t, order.SkuPattern)
	assert.Equal(t, "met2", *order.SkuPattern)
	require.NotNil(t, order.BasePrice)
	assert.True(t, order.BasePrice.Equal(decimal.RequireFromString("177.98"))) // 157.99 + 19.99
	require.NotNil(t, order.Taxes)
	assert.True(t, order.Taxes.Equal(decimal.RequireFromString("13.18")))
	require.NotNil(t, order.ProcessingFee)
	assert.True(t, order.ProcessingFee.Equal(decimal.RequireFromString("19.12")))
	require.NotNil(t, order.NetAmount)
	// 191.16 − 19.12 fee − 19.12 hold − 10.00 commission
	assert.True(t, order.NetAmount.Equal(decimal.RequireFromString("142.92")))
}

func TestIngestNewOrder_RedeliveryIsIdempotent(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newOrderService(orderRepo, newStubEventRepo(), nil)

	payload := dto.WebhookPayload{"orderId": "BG-2002", "productPrice": "88.99"}

	first, created, err := svc.IngestNewOrder(context.Background(), testProduct(), "", payload)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.IngestNewOrder(context.Background(), testProduct(), "", payload)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, orderRepo.orders, 1)
}

func TestIngestNewOrder_MissingOrderIDGetsGenerated(t *testing.T) {
	svc := newOrderService(newStubOrderRepo(), newStubEventRepo(), nil)

	order, created, err := svc.IngestNewOrder(context.Background(), nil, "", dto.WebhookPayload{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, order.OrderID, "WH-")
}

func TestIngestNewOrder_UnknownProductKeepsNullFinancials(t *testing.T) {
	svc := newOrderService(newStubOrderRepo(), newStubEventRepo(), []model.PricingRule{twoBottleRule()})

	order, _, err := svc.IngestNewOrder(context.Background(), testProduct(), "", dto.WebhookPayload{
		"orderId":      "BG-3003",
		"productName":  "Mystery Gadget Pro",
		"productPrice": "49.99",
	})
	require.NoError(t, err)
	assert.Nil(t, order.SkuPattern)
	assert.Nil(t, order.BasePrice)
	assert.Nil(t, order.NetAmount)
}

func TestRecordRefund_MarksOrderRefunded(t *testing.T) {
	orderRepo := newStubOrderRepo()
	eventRepo := newStubEventRepo()
	svc := newOrderService(orderRepo, eventRepo, nil)

	_, _, err := svc.IngestNewOrder(context.Background(), testProduct(), "", dto.WebhookPayload{"orderId": "BG-4004"})
	require.NoError(t, err)

	refund, err := svc.RecordRefund(context.Background(), testProduct(), dto.WebhookPayload{
		"refundId": "RF-77",
		"orderId":  "BG-4004",
		"amount":   "88.99",
	})
	require.NoError(t, err)
	assert.Equal(t, "RF-77", refund.RefundID)
	assert.Equal(t, "full", refund.RefundType)
	assert.Equal(t, "refunded", orderRepo.orders["BG-4004"].Status)
}

func TestRecordRefund_PartialFlagDetected(t *testing.T) {
	svc := newOrderService(newStubOrderRepo(), newStubEventRepo(), nil)

	refund, err := svc.RecordRefund(context.Background(), nil, dto.WebhookPayload{
		"refundId":      "RF-78",
		"partialRefund": true,
		"amount":        "20.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "partial", refund.RefundType)
}

func TestRecordRefund_UnknownOrderStillStored(t *testing.T) {
	eventRepo := newStubEventRepo()
	svc := newOrderService(newStubOrderRepo(), eventRepo, nil)

	_, err := svc.RecordRefund(context.Background(), nil, dto.WebhookPayload{
		"refundId": "RF-79",
		"orderId":  "never-seen",
	})
	require.NoError(t, err)
	assert.Contains(t, eventRepo.refunds, "RF-79")
}

func TestRecordChargeback_MarksOrderAndGeneratesID(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newOrderService(orderRepo, newStubEventRepo(), nil)

	_, _, err := svc.IngestNewOrder(context.Background(), testProduct(), "", dto.WebhookPayload{"orderId": "BG-5005"})
	require.NoError(t, err)

	cb, err := svc.RecordChargeback(context.Background(), testProduct(), dto.WebhookPayload{"orderId": "BG-5005"})
	require.NoError(t, err)
	assert.Contains(t, cb.ChargebackID, "CB-")
	assert.Equal(t, "chargeback", orderRepo.orders["BG-5005"].Status)
}

func TestRecordCancellation_DefaultReason(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newOrderService(orderRepo, newStubEventRepo(), nil)

	_, _, err := svc.IngestNewOrder(context.Background(), testProduct(), "", dto.WebhookPayload{"orderId": "BG-6006"})
	require.NoError(t, err)

	cancel, err := svc.RecordCancellation(context.Background(), dto.WebhookPayload{"orderId": "BG-6006"})
	require.NoError(t, err)
	assert.Equal(t, "Customer request", cancel.Reason)
	assert.Equal(t, "cancelled", orderRepo.orders["BG-6006"].Status)
}

func TestRecordFulfillment_ParsesShippedAt(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newOrderService(orderRepo, newStubEventRepo(), nil)

	_, _, err := svc.IngestNewOrder(context.Background(), testProduct(), "", dto.WebhookPayload{"orderId": "BG-7007"})
	require.NoError(t, err)

	f, err := svc.RecordFulfillment(context.Background(), dto.WebhookPayload{
		"orderId":        "BG-7007",
		"trackingNumber": "1Z999",
		"shippedAt":      "2026-02-14T09:30:00Z",
	})
	require.NoError(t, err)
	require.NotNil(t, f.ShippedAt)
	assert.Equal(t, 2026, f.ShippedAt.Year())
	assert.Equal(t, "fulfilled", orderRepo.orders["BG-7007"].Status)
}

func TestRecordRecurring_FailedStatusKept(t *testing.T) {
	eventRepo := newStubEventRepo()
	svc := newOrderService(newStubOrderRepo(), eventRepo, nil)

	charge, err := svc.RecordRecurring(context.Background(), testProduct(), dto.WebhookPayload{
		"chargeId": "RC-31",
		"status":   "failed",
		"amount":   "110.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "failed", charge.Status)
	assert.True(t, charge.Amount.Equal(decimal.RequireFromString("110.00")))
}

func TestListOrders_FiltersByStatus(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newOrderService(orderRepo, newStubEventRepo(), nil)

	ctx := context.Background()
	_, _, err := svc.IngestNewOrder(ctx, testProduct(), "", dto.WebhookPayload{"orderId": "A-1"})
	require.NoError(t, err)
	_, _, err = svc.IngestNewOrder(ctx, testProduct(), "", dto.WebhookPayload{"orderId": "A-2"})
	require.NoError(t, err)
	_, err = svc.RecordRefund(ctx, nil, dto.WebhookPayload{"refundId": "RF-1", "orderId": "A-2"})
	require.NoError(t, err)

	resp, err := svc.ListOrders(ctx, dto.OrderFilter{Status: "refunded", Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "A-2", resp.Data[0].OrderID)
}
