package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"moodjournal/middleware"
	"moodjournal/models"
	"moodjournal/repository"
	"moodjournal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// ExportHandler 导出当前用户的全部对话记录
type ExportHandler struct {
	repo repository.ChatRepository
}

// NewExportHandler 创建导出处理器
func NewExportHandler(repo repository.ChatRepository) *ExportHandler {
	return &ExportHandler{repo: repo}
}

func (h *ExportHandler) load(c *gin.Context) ([]models.ChatExchange, bool) {
	chats, err := h.repo.FindAll(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	return chats, true
}

// summarize 按情绪汇总，排序规则与仪表盘统计一致
func summarize(chats []models.ChatExchange) []models.MoodCount {
	rows := make([]models.MoodCount, 0, len(chats))
	for _, chat := range chats {
		rows = append(rows, models.MoodCount{Mood: chat.Mood, Count: 1})
	}
	return models.FoldMoodCounts(rows)
}

func exportFilename(ext string) string {
	return fmt.Sprintf("mood_journal_%s.%s", time.Now().Format("20060102"), ext)
}

// ExportCSV 导出对话记录为 CSV
// @Summary 导出对话记录（CSV）
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file "CSV 文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/chat/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	chats, ok := h.load(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	headers := []string{"ID", "消息", "回复", "情绪", "时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, chat := range chats {
		row := []string{
			fmt.Sprintf("%d", chat.ID),
			chat.Message,
			chat.Reply,
			string(chat.Mood.OrNeutral()),
			chat.CreatedAt.Format(exportTimeLayout),
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

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename("csv")))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出对话记录为 JSON
// @Summary 导出对话记录（JSON）
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "导出成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/chat/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	chats, ok := h.load(c)
	if !ok {
		return
	}

	summary := summarize(chats)
	stats := make([]service.MoodStat, 0, len(summary))
	for _, mc := range summary {
		stats = append(stats, service.MoodStat{
			Mood:       mc.Mood,
			Count:      mc.Count,
			Percentage: service.Percentage(mc.Count, int64(len(chats))),
		})
	}

	Success(c, gin.H{
		"exported_at": time.Now().Format(time.RFC3339),
		"total_count": len(chats),
		"mood_stats":  stats,
		"chats":       chats,
	})
}

// ExportExcel 导出对话记录为 Excel，第二个工作表为情绪汇总
// @Summary 导出对话记录（Excel）
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "Excel 文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/chat/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	chats, ok := h.load(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(chats)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename("xlsx")))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}

const (
	chatSheet    = "对话记录"
	summarySheet = "情绪汇总"
)

func buildWorkbook(chats []models.ChatExchange) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", chatSheet); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    border,
	})

	f.SetColWidth(chatSheet, "A", "A", 10)
	f.SetColWidth(chatSheet, "B", "C", 50)
	f.SetColWidth(chatSheet, "D", "D", 12)
	f.SetColWidth(chatSheet, "E", "E", 20)

	headers := []string{"ID", "消息", "回复", "情绪", "时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(chatSheet, cell, header)
		f.SetCellStyle(chatSheet, cell, cell, headerStyle)
	}
	for i, chat := range chats {
		row := i + 2
		f.SetCellValue(chatSheet, fmt.Sprintf("A%d", row), chat.ID)
		f.SetCellValue(chatSheet, fmt.Sprintf("B%d", row), chat.Message)
		f.SetCellValue(chatSheet, fmt.Sprintf("C%d", row), chat.Reply)
		f.SetCellValue(chatSheet, fmt.Sprintf("D%d", row), string(chat.Mood.OrNeutral()))
		f.SetCellValue(chatSheet, fmt.Sprintf("E%d", row), chat.CreatedAt.Format(exportTimeLayout))
		f.SetCellStyle(chatSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), dataStyle)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	for i, header := range []string{"情绪", "数量", "占比(%)"} {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(summarySheet, cell, header)
		f.SetCellStyle(summarySheet, cell, cell, headerStyle)
	}
	summary := summarize(chats)
	for i, mc := range summary {
		row := i + 2
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(mc.Mood))
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), mc.Count)
		f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), service.Percentage(mc.Count, int64(len(chats))))
	}
	totalRow := len(summary) + 2
	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", totalRow), "合计")
	f.SetCellValue(summarySheet, fmt.Sprintf("B%d", totalRow), len(chats))

	return f, nil
}
