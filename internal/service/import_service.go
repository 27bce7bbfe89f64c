package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ImportService loads orders from the platform's transaction export CSV.
type ImportService interface {
	ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

type importService struct {
	orderRepo  repository.OrderRepository
	pricingSvc PricingService
	recalc     RecalcService
}

func NewImportService(orderRepo repository.OrderRepository, pricingSvc PricingService, recalc RecalcService) ImportService {
	return &importService{orderRepo: orderRepo, pricingSvc: pricingSvc, recalc: recalc}
}

// csvColumns maps the export's header names to order fields. Columns
// missing from the file are simply left empty.
var csvColumns = map[string]string{
	"Order ID":                             "order_id",
	"External Order ID":                    "transaction_id",
	"Product Names":                        "product_name",
	"Product Codenames":                    "product_id",
	"Total collected (Transaction Amount)": "product_price",
	"Customer Email Address":               "customer_email",
	"Customer Name":                        "customer_name",
	"Customer Phone":                       "customer_phone",
	"Country":                              "customer_country",
	"State":                                "customer_state",
	"City":                                 "customer_city",
	"Address":                              "customer_address",
	"Zip":                                  "customer_zip",
	"Affiliate ID":                         "affiliate_id",
	"Affiliate Name":                       "affiliate_name",
	"Affiliate Commission Amount":          "commission",
	"Payment Method":                       "payment_method",
	"Status":                               "status",
	"IP Address":                           "ip_address",
	"Date Created":                         "created_at",
	"Is Test":                              "is_test",
}

var nonNumericRe = regexp.MustCompile(`[^0-9.]`)

// parseMoney strips currency symbols and thousands separators
// ("$1,234.56" → 1234.56).
func parseMoney(s string) decimal.Decimal {
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// mapStatus folds the export's free-form status text onto our fixed set.
func mapStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "refund"):
		return "refunded"
	case strings.Contains(s, "cancel"):
		return "cancelled"
	case strings.Contains(s, "chargeback"):
		return "chargeback"
	default:
		return "completed"
	}
}

var csvDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

func parseCSVDate(s string) (time.Time, bool) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *importService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("import: read headers: %w", err)
	}
	// Strip UTF-8 BOM from the first header cell.
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	// Column index per order field.
	idx := map[string]int{}
	for i, h := range headers {
		if field, ok := csvColumns[strings.TrimSpace(h)]; ok {
			idx[field] = i
		}
	}
	if _, ok := idx["order_id"]; !ok {
		return nil, fmt.Errorf("import: CSV has no %q column", "Order ID")
	}

	cell := func(row []string, field string) string {
		i, ok := idx[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &dto.ImportResult{}
	rowNum := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.SkippedRows++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		orderID := cell(row, "order_id")
		if orderID == "" {
			result.SkippedRows++
			continue
		}
		if cell(row, "is_test") == "1" {
			result.SkippedRows++
			continue
		}

		rowMap := map[string]string{}
		for field, i := range idx {
			if i < len(row) {
				rowMap[field] = strings.TrimSpace(row[i])
			}
		}
		raw, _ := json.Marshal(rowMap)

		order := &model.Order{
			OrderID:         orderID,
			TransactionID:   strPtrOrNil(defaultStr(cell(row, "transaction_id"), orderID)),
			ProductID:       strPtrOrNil(cell(row, "product_id")),
			ProductName:     strPtrOrNil(cell(row, "product_name")),
			ProductPrice:    parseMoney(cell(row, "product_price")),
			Quantity:        1,
			CustomerEmail:   strPtrOrNil(cell(row, "customer_email")),
			CustomerName:    strPtrOrNil(cell(row, "customer_name")),
			CustomerPhone:   strPtrOrNil(cell(row, "customer_phone")),
			CustomerCountry: strPtrOrNil(cell(row, "customer_country")),
			CustomerState:   strPtrOrNil(cell(row, "customer_state")),
			CustomerCity:    strPtrOrNil(cell(row, "customer_city")),
			CustomerAddress: strPtrOrNil(cell(row, "customer_address")),
			CustomerZip:     strPtrOrNil(cell(row, "customer_zip")),
			AffiliateID:     strPtrOrNil(cell(row, "affiliate_id")),
			AffiliateName:   strPtrOrNil(cell(row, "affiliate_name")),
			Commission:      parseMoney(cell(row, "commission")),
			PaymentMethod:   defaultStr(cell(row, "payment_method"), "card"),
			Currency:        "USD",
			Status:          mapStatus(cell(row, "status")),
			IPAddress:       strPtrOrNil(cell(row, "ip_address")),
			RawData:         datatypes.JSON(raw),
		}
		if t, ok := parseCSVDate(cell(row, "created_at")); ok {
			order.CreatedAt = t
		}

		created, err := s.orderRepo.Upsert(ctx, order)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if !created {
			result.Duplicates++
			continue
		}
		result.Imported++
	}

	// Imported rows carry no financials yet; one backfill run derives
	// them all against the current rule set.
	if result.Imported > 0 && s.recalc != nil {
		if _, err := s.recalc.Recalculate(ctx); err != nil {
			log.Warn().Err(err).Msg("import: post-import recalculation failed")
		}
	}

	return result, nil
}
