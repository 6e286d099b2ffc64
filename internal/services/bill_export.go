package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"order-desk/internal/dto"
)

const billSheet = "فاکتور"

var billHeaders = []string{
	"ردیف", "کد", "نام سفارش", "دسته‌بندی", "طراح", "قیمت", "پیش‌پرداخت", "باقی‌مانده",
}

// WriteBillXLSX выгружает счёт в книгу Excel.
func WriteBillXLSX(w io.Writer, bill *dto.BillDTO) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", billSheet); err != nil {
		return fmt.Errorf("ошибка создания листа: %w", err)
	}
	if err := f.SetSheetView(billSheet, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
		return fmt.Errorf("ошибка настройки листа: %w", err)
	}

	meta := [][]interface{}{
		{"مشتری", bill.CustomerName},
		{"تاریخ دریافت", bill.ReceivedAt},
		{"تاریخ تحویل", bill.DueAt},
	}
	for i, row := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(billSheet, cell, &row); err != nil {
			return err
		}
	}

	headerRow := len(meta) + 2
	headerCell, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetSheetRow(billSheet, headerCell, &billHeaders); err != nil {
		return err
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(billHeaders), headerRow)
	_ = f.SetCellStyle(billSheet, headerCell, lastHeader, bold)

	for i, r := range bill.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		row := []interface{}{
			i + 1, r.SecretKey, r.OrderName, r.Category, r.Designer, r.Price, r.ReceivePrice, r.ReminderPrice,
		}
		if err := f.SetSheetRow(billSheet, cell, &row); err != nil {
			return err
		}
	}

	totalRow := headerRow + 1 + len(bill.Rows)
	totalCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totals := []interface{}{
		"جمع", "", "", "", "", bill.Totals.Price, bill.Totals.ReceivePrice, bill.Totals.ReminderPrice,
	}
	if err := f.SetSheetRow(billSheet, totalCell, &totals); err != nil {
		return err
	}
	lastTotal, _ := excelize.CoordinatesToCellName(len(totals), totalRow)
	_ = f.SetCellStyle(billSheet, totalCell, lastTotal, bold)

	_ = f.SetColWidth(billSheet, "C", "C", 30)
	_ = f.SetColWidth(billSheet, "D", "E", 20)
	_ = f.SetColWidth(billSheet, "F", "H", 15)

	return f.Write(w)
}

func boolPtr(b bool) *bool { return &b }
