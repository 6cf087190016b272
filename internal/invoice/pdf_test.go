package invoice

import (
	"testing"
	"time"

	"shopifly/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() (model.Order, []model.OrderItem) {
	o := model.Order{
		ID:             "order-1",
		UserID:         "user-1",
		Status:         model.OrderStatusPending,
		TotalPrice:     decimal.RequireFromString("350.00"),
		ShipName:       "Yamada Taro",
		ShipPostalCode: "150-0001",
		ShipPrefecture: "Tokyo",
		ShipCity:       "Shibuya",
		ShipLine1:      "1-2-3 Jingumae",
		ShipLine2:      "Room 401",
		ShipPhone:      "03-1234-5678",
		CreatedAt:      time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	items := []model.OrderItem{
		{
			ID:                  "item-1",
			OrderID:             "order-1",
			ProductID:           "prod-1",
			ProductNameSnapshot: "Coffee Beans",
			UnitPriceSnapshot:   decimal.RequireFromString("100.00"),
			Quantity:            2,
		},
		{
			ID:                  "item-2",
			OrderID:             "order-1",
			ProductID:           "prod-2",
			ProductNameSnapshot: "Drip Kettle",
			UnitPriceSnapshot:   decimal.RequireFromString("150.00"),
			Quantity:            1,
		},
	}
	return o, items
}

func TestRender_ProducesPDF(t *testing.T) {
	o, items := sampleOrder()

	pdf, err := Render(o, items)
	require.NoError(t, err)

	//PDFヘッダのマジックバイト
	require.Greater(t, len(pdf), 4)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRender_EmptyItems(t *testing.T) {
	o, _ := sampleOrder()
	o.TotalPrice = decimal.Zero

	pdf, err := Render(o, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

// Test: 任意項目（建物名・電話）が無くても出力できる
func TestRender_OptionalFieldsOmitted(t *testing.T) {
	o, items := sampleOrder()
	o.ShipLine2 = ""
	o.ShipPhone = ""

	pdf, err := Render(o, items)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
