// Package invoice は注文の請求書PDFを生成する。
package invoice

import (
	"bytes"
	"fmt"

	"shopifly/internal/domain/model"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Render は注文と明細から請求書PDFを組み立ててバイト列で返す。
func Render(o model.Order, items []model.OrderItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// ヘッダ
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, "Shopifly")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "INVOICE")
	pdf.Ln(10)

	// 注文情報
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Order ID: %s", o.ID))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Order date: %s", o.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Status: %s", o.Status))
	pdf.Ln(10)

	// 配送先
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 5, "Ship to")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, o.ShipName)
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("%s %s %s", o.ShipPostalCode, o.ShipPrefecture, o.ShipCity))
	pdf.Ln(5)
	pdf.Cell(0, 5, o.ShipLine1)
	pdf.Ln(5)
	if o.ShipLine2 != "" {
		pdf.Cell(0, 5, o.ShipLine2)
		pdf.Ln(5)
	}
	if o.ShipPhone != "" {
		pdf.Cell(0, 5, fmt.Sprintf("Tel: %s", o.ShipPhone))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	// 明細テーブルのヘッダ
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Subtotal", "1", 1, "R", true, 0, "")

	// 明細行
	pdf.SetFont("Helvetica", "", 10)
	for _, it := range items {
		sub := it.UnitPriceSnapshot.Mul(decimal.NewFromInt(it.Quantity))
		pdf.CellFormat(90, 8, it.ProductNameSnapshot, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, it.UnitPriceSnapshot.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, sub.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// 合計
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, o.TotalPrice.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
