package api

import (
	"strconv"

	"moodjournal/middleware"
	"moodjournal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler 对话与情绪统计处理器
type ChatHandler struct {
	conversation *service.ConversationService
	aggregator   *service.MoodAggregator
	paginator    *service.HistoryPaginator
}

// NewChatHandler 创建对话处理器
func NewChatHandler(conversation *service.ConversationService, aggregator *service.MoodAggregator, paginator *service.HistoryPaginator) *ChatHandler {
	return &ChatHandler{
		conversation: conversation,
		aggregator:   aggregator,
		paginator:    paginator,
	}
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Message string `json:"message" example:"I had a great day today!"`
}

// AnalyzeRequest 情绪分析请求
type AnalyzeRequest struct {
	Text string `json:"text" example:"I feel tired but hopeful"`
}

// DeleteChatResponse 删除单条记录结果
type DeleteChatResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteHistoryResponse 清空历史结果
type DeleteHistoryResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

// Send 发送消息
// @Summary 发送消息
// @Description 结合最近的对话上下文获取 AI 回复，并记录本条消息的情绪
// @Tags 对话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "消息内容（不超过 2000 字符）"
// @Success 200 {object} Response{data=service.SendMessageResult} "发送成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 503 {object} Response "AI 服务不可用"
// @Router /api/chat/send [post]
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.conversation.SendMessage(c.Request.Context(), service.SendMessageRequest{
		UserID:  middleware.GetCurrentUserID(c),
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	Success(c, result)
}

// Dashboard 仪表盘
// @Summary 仪表盘
// @Description 总对话数、最近 5 条记录和情绪分布
// @Tags 对话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Dashboard} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/chat/dashboard [get]
func (h *ChatHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.aggregator.Dashboard(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	Success(c, dashboard)
}

// MoodStats 情绪占比统计
// @Summary 情绪占比
// @Tags 对话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.MoodStatsResult} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/chat/mood-stats [get]
func (h *ChatHandler) MoodStats(c *gin.Context) {
	stats, err := h.aggregator.MoodStats(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	Success(c, stats)
}

// History 分页历史记录
// @Summary 历史记录
// @Description 按时间倒序分页，非法参数按默认值处理
// @Tags 对话
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量（1-100）" default(20)
// @Success 200 {object} Response{data=service.HistoryPage} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/chat/history [get]
func (h *ChatHandler) History(c *gin.Context) {
	page, limit := service.ParsePagination(c.Query("page"), c.Query("limit"))

	result, err := h.paginator.Paginate(c.Request.Context(), middleware.GetCurrentUserID(c), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	Success(c, result)
}

// DeleteChat 删除单条记录
// @Summary 删除对话记录
// @Tags 对话
// @Produce json
// @Security BearerAuth
// @Param chatId path int true "记录 ID"
// @Success 200 {object} Response{data=DeleteChatResponse} "删除成功"
// @Failure 400 {object} Response "ID 格式错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/chat/chat/{chatId} [delete]
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chatId"), 10, 64)
	if err != nil || chatID == 0 {
		BadRequest(c, "无效的记录 ID")
		return
	}

	if err := h.conversation.DeleteChat(c.Request.Context(), middleware.GetCurrentUserID(c), uint(chatID)); err != nil {
		writeServiceError(c, err)
		return
	}
	SuccessWithMessage(c, "删除成功", DeleteChatResponse{Deleted: true})
}

// DeleteHistory 清空历史
// @Summary 清空历史记录
// @Tags 对话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=DeleteHistoryResponse} "删除成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/chat/delhistory [delete]
func (h *ChatHandler) DeleteHistory(c *gin.Context) {
	n, err := h.conversation.DeleteAllHistory(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	SuccessWithMessage(c, "历史记录已清空", DeleteHistoryResponse{DeletedCount: n})
}

// Analyze 情绪分析
// @Summary 情绪分析
// @Description 返回情绪、置信度（0-100）和正负得分，不保存记录
// @Tags 对话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AnalyzeRequest true "待分析文本"
// @Success 200 {object} Response{data=service.MoodDetail} "分析成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/chat/analyze [post]
func (h *ChatHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	detail, err := h.conversation.Analyze(req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	Success(c, detail)
}
