package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"budgetbite/analytics"
	"budgetbite/database"
	"budgetbite/middleware"
	"budgetbite/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	timeLayout  = "2006-01-02 15:04:05"
	monthLayout = "2006-01"
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// parseRange 解析 start_time/end_time，结束日期包含当天
func parseRange(c *gin.Context) (analytics.DateRange, bool) {
	startStr := c.Query("start_time")
	endStr := c.Query("end_time")
	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return analytics.DateRange{}, false
	}
	start, err := time.ParseInLocation(dateLayout, startStr, time.Local)
	if err != nil {
		BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
		return analytics.DateRange{}, false
	}
	end, err := time.ParseInLocation(dateLayout, endStr, time.Local)
	if err != nil {
		BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
		return analytics.DateRange{}, false
	}
	if end.Before(start) {
		BadRequest(c, "结束时间不能早于开始时间")
		return analytics.DateRange{}, false
	}
	return analytics.DateRange{From: start, To: end.AddDate(0, 0, 1)}, true
}

func (h *ExportHandler) transactions(c *gin.Context, userID uint, r analytics.DateRange) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := database.DB.WithContext(c.Request.Context()).
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userID, r.From, r.To).
		Order("spent_at DESC").
		Find(&txns).Error
	return txns, err
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录
// @Description 根据时间范围导出消费记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2026-06-01)"
// @Param end_time query string true "结束时间 (2026-06-30)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	r, ok := parseRange(c)
	if !ok {
		return
	}

	txns, err := h.transactions(c, userID, r)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	buf := new(bytes.Buffer)
	// BOM，Excel 打开时不乱码
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	headers := []string{"ID", "Amount", "Category", "Subcategory", "Description", "Meal", "Spent At"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, t := range txns {
		row := []string{
			fmt.Sprintf("%d", t.ID),
			fmt.Sprintf("%.2f", t.Amount),
			t.Category,
			t.Subcategory,
			t.Description,
			t.MealType,
			t.SpentAt.Format(timeLayout),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.csv", c.Query("start_time"), c.Query("end_time"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2026-06-01)"
// @Param end_time query string true "结束时间 (2026-06-30)"
// @Success 200 {object} Response{data=[]models.Transaction} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	r, ok := parseRange(c)
	if !ok {
		return
	}

	txns, err := h.transactions(c, userID, r)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	var total float64
	for _, t := range txns {
		total += t.Amount
	}
	Success(c, gin.H{
		"start_time":   c.Query("start_time"),
		"end_time":     c.Query("end_time"),
		"total_count":  len(txns),
		"total_amount": analytics.Round2(total),
		"expenses":     txns,
	})
}

var cellBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

type reportStyles struct {
	header, data, summary int
}

func newReportStyles(f *excelize.File) (reportStyles, error) {
	var s reportStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	}); err != nil {
		return s, err
	}
	if s.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	}); err != nil {
		return s, err
	}
	s.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	})
	return s, err
}

// writeHeader 写表头并设置列宽
func writeHeader(f *excelize.File, sheet string, style int, headers []string, widths []float64) error {
	for i, header := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
		if i < len(widths) {
			if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuildMonthReport 生成月度报表：消费明细与类别汇总两个工作表
func BuildMonthReport(month time.Time, txns []models.Transaction, budget float64) (*excelize.File, error) {
	f := excelize.NewFile()
	styles, err := newReportStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	const detail = "Expenses"
	if err := f.SetSheetName("Sheet1", detail); err != nil {
		f.Close()
		return nil, err
	}
	headers := []string{"ID", "Date", "Category", "Subcategory", "Description", "Amount"}
	if err := writeHeader(f, detail, styles.header, headers, []float64{8, 20, 15, 15, 30, 12}); err != nil {
		f.Close()
		return nil, err
	}

	var total float64
	for i, t := range txns {
		row := i + 2
		values := []interface{}{t.ID, t.SpentAt.Format(timeLayout), t.Category, t.Subcategory, t.Description, t.Amount}
		if err := f.SetSheetRow(detail, fmt.Sprintf("A%d", row), &values); err != nil {
			f.Close()
			return nil, err
		}
		f.SetCellStyle(detail, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), styles.data)
		total += t.Amount
	}
	summaryRow := len(txns) + 2
	f.SetCellValue(detail, fmt.Sprintf("A%d", summaryRow), "Total")
	f.MergeCell(detail, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("E%d", summaryRow))
	f.SetCellValue(detail, fmt.Sprintf("F%d", summaryRow), analytics.Round2(total))
	f.SetCellStyle(detail, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), styles.summary)

	const summary = "Categories"
	if _, err := f.NewSheet(summary); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeader(f, summary, styles.header, []string{"Category", "Spent", "Share %"}, []float64{18, 14, 12}); err != nil {
		f.Close()
		return nil, err
	}
	totals := analytics.CategoryTotals(txns)
	for i, ct := range totals {
		row := i + 2
		share := 0.0
		if total > 0 {
			share = analytics.Round2(ct.Total / total * 100)
		}
		values := []interface{}{ct.Category, ct.Total, share}
		f.SetSheetRow(summary, fmt.Sprintf("A%d", row), &values)
		f.SetCellStyle(summary, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), styles.data)
	}
	footer := len(totals) + 2
	footerValues := []interface{}{
		fmt.Sprintf("Budget %s", month.Format(monthLayout)),
		budget,
		fmt.Sprintf("Left %.2f", budget-total),
	}
	f.SetSheetRow(summary, fmt.Sprintf("A%d", footer), &footerValues)
	f.SetCellStyle(summary, fmt.Sprintf("A%d", footer), fmt.Sprintf("C%d", footer), styles.summary)

	return f, nil
}

// ExportXLSX 导出月度报表
// @Summary 导出月度报表
// @Description 指定月份的消费明细与类别汇总，默认当月
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string false "月份 (2026-06)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	month := clock()
	if m := c.Query("month"); m != "" {
		parsed, err := time.ParseInLocation(monthLayout, m, time.Local)
		if err != nil {
			BadRequest(c, "月份格式错误，应为: 2006-01")
			return
		}
		month = parsed
	}
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	r := analytics.MonthRange(month.Year(), month.Month(), time.Local)

	txns, err := h.transactions(c, user.ID, r)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	f, err := BuildMonthReport(r.From, txns, user.MonthlyBudget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	filename := fmt.Sprintf("budgetbite_%s.xlsx", r.From.Format(monthLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}
