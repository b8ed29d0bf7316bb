package httpapi

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"prompt-tracker/internal/service"
)

// CompletionReportHeader 按日分解工作表表头
var CompletionReportHeader = []string{
	"Date",
	"Completed",
	"Pending",
	"Refused",
}

// GenerateCompletionReportExcel 生成完成率报表 Excel 文件
// 第一块为汇总（总量/状态计数/完成率），其后为按日分解表
func GenerateCompletionReportExcel(report *service.CompletionReport, startDate, endDate string) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Prompt Completion"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 汇总块
	summary := [][]any{
		{"Report Range", startDate + " - " + endDate},
		{"Total Prompts", report.TotalPrompts},
		{"Completed Prompts", report.CompletedPrompts},
		{"Pending Prompts", report.PendingPrompts},
		{"Refused Prompts", report.RefusedPrompts},
		{"Completion Rate (%)", report.CompletionRate},
	}
	for i, row := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheetName, labelCell, row[0])
		_ = f.SetCellValue(sheetName, valueCell, row[1])
		_ = f.SetCellStyle(sheetName, labelCell, labelCell, headerStyle)
	}

	// 按日分解表
	headerRow := len(summary) + 2
	for col, title := range CompletionReportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for i, day := range report.ByDate {
		values := []any{day.Date, day.Completed, day.Pending, day.Refused}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, headerRow+1+i)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "D", 14)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}
