package api

import (
	"errors"

	"moodjournal/service"

	"github.com/gin-gonic/gin"
)

// writeServiceError 将 service 层错误映射为 HTTP 响应。
// 参数错误返回详情；补全失败与存储失败在任何运行模式下都只返回通用提示
func writeServiceError(c *gin.Context, err error) {
	var (
		ve *service.ValidationError
		ce *service.CompletionError
		pe *service.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		BadRequest(c, ve.Error())
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, "对话记录不存在")
	case errors.As(err, &ce), errors.Is(err, service.ErrCompletionUnavailable):
		ServiceUnavailable(c, "AI 服务暂时不可用，请稍后重试")
	case errors.As(err, &pe):
		InternalError(c, "数据存储异常，请稍后重试")
	default:
		InternalError(c, SafeErrorMessage(err, "服务器错误"))
	}
}
