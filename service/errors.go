package service

import (
	"errors"
	"fmt"

	"moodjournal/repository"
)

var (
	// ErrNotFound 目标记录不存在或不属于当前用户，属于正常结果
	ErrNotFound = errors.New("chat not found")
	// ErrCompletionUnavailable 补全服务不可用（超时、网络错误、空回复等）
	ErrCompletionUnavailable = errors.New("completion provider unavailable")
)

// PersistenceError 存储失败，与 repository 层共用同一类型
type PersistenceError = repository.PersistenceError

// ValidationError 请求参数不合法，在任何 I/O 之前检测
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CompletionError 调用补全服务失败，不会写入任何记录
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	if e.Err == nil {
		return "completion failed"
	}
	return "completion failed: " + e.Err.Error()
}

func (e *CompletionError) Unwrap() error { return e.Err }

// persistence 确保存储错误统一为 PersistenceError
func persistence(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
