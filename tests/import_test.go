package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportService(orderRepo *stubOrderRepo, rules []model.PricingRule) service.ImportService {
	pricingSvc := service.NewPricingService(newStubPricingRepo(rules...), nil)
	recalc := service.NewRecalcService(orderRepo, pricingSvc, pricing.NewNormalizer(), pricing.NewCalculator())
	return service.NewImportService(orderRepo, pricingSvc, recalc)
}

const importHeader = "Order ID,Product Names,Total collected (Transaction Amount),Customer Email Address,Customer Name,Status,Is Test,Date Created,Affiliate Commission Amount"

func TestImportCSV_ImportsRowsAndDerivesFinancials(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newImportService(orderRepo, januaryRules())

	csv := importHeader + "\n" +
		`IMP-1,Meta Trim BHB 2 Bottle,"$191.16",jane@example.com,Jane Doe,Completed,0,2026-01-20 14:02:11,$10.00` + "\n" +
		`IMP-2,Meta Trim BHB 2 Bottle,"$191.16",john@example.com,John Roe,Refunded,0,2026-01-22 09:15:00,$10.00` + "\n"

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 0, result.SkippedRows)

	first := orderRepo.orders["IMP-1"]
	require.NotNil(t, first)
	assert.True(t, first.ProductPrice.Equal(decimal.RequireFromString("191.16")))
	assert.True(t, first.Commission.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, "completed", first.Status)
	assert.Equal(t, 2026, first.CreatedAt.Year())
	// Post-import backfill resolved the January rule.
	require.NotNil(t, first.SkuPattern)
	assert.Equal(t, "met2", *first.SkuPattern)

	assert.Equal(t, "refunded", orderRepo.orders["IMP-2"].Status)
}

func TestImportCSV_SkipsTestRowsAndEmptyIDs(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newImportService(orderRepo, nil)

	csv := importHeader + "\n" +
		`IMP-10,Meta Trim BHB 3 Bottles,$177.00,a@b.c,A B,Completed,1,2026-02-01,` + "\n" +
		`,Meta Trim BHB 3 Bottles,$177.00,a@b.c,A B,Completed,0,2026-02-01,` + "\n" +
		`IMP-11,Meta Trim BHB 3 Bottles,$177.00,a@b.c,A B,Completed,0,2026-02-01,` + "\n"

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.SkippedRows)
	assert.NotContains(t, orderRepo.orders, "IMP-10")
}

func TestImportCSV_DuplicatesLeaveStoredRowUntouched(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newImportService(orderRepo, nil)

	csv := importHeader + "\n" +
		`IMP-20,Meta Trim BHB 3 Bottles,$177.00,a@b.c,A B,Completed,0,2026-02-01,` + "\n"

	_, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Len(t, orderRepo.orders, 1)
}

func TestImportCSV_BOMAndMissingOrderIDColumn(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newImportService(orderRepo, nil)

	// UTF-8 BOM on the first header still resolves the column.
	csv := "\ufeff" + importHeader + "\n" +
		`IMP-30,Meta Trim BHB 3 Bottles,$177.00,a@b.c,A B,Completed,0,2026-02-01,` + "\n"
	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	_, err = svc.ImportCSV(context.Background(), strings.NewReader("Nope,Columns\nx,y\n"))
	assert.Error(t, err)
}

func TestImportCSV_ScrubsCurrencyFormatting(t *testing.T) {
	orderRepo := newStubOrderRepo()
	svc := newImportService(orderRepo, nil)

	csv := importHeader + "\n" +
		`IMP-40,Meta Trim BHB 7 Bottles,"$1,294.00",a@b.c,A B,Completed,0,2026-02-01,` + "\n"

	_, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.True(t, orderRepo.orders["IMP-40"].ProductPrice.Equal(decimal.RequireFromString("1294.00")))
}
