package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"moodjournal/models"
	"moodjournal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination 分页信息
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// HistoryPage 一页历史记录
type HistoryPage struct {
	Chats      []models.ChatExchange `json:"chats"`
	Pagination Pagination            `json:"pagination"`
}

// ParsePagination 解析查询参数：取开头的整数部分，无法解析时使用默认值，page 最小为 1，limit 限定在 [1, 100]
func ParsePagination(pageStr, limitStr string) (page, limit int) {
	page = parseLeadingInt(pageStr, DefaultPage)
	limit = parseLeadingInt(limitStr, DefaultLimit)
	return clampPage(page), clampLimit(limit)
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > math.MaxInt32 {
		return math.MaxInt32
	}
	return page
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// parseLeadingInt 解析如 "12abc" 中的 12；没有数字时返回 def
func parseLeadingInt(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// 超出范围的数字按符号取极值，交给调用方截断
		if s[0] == '-' {
			return math.MinInt32
		}
		return math.MaxInt32
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}

// HistoryPaginator 历史记录分页
type HistoryPaginator struct {
	repo repository.ChatRepository
}

func NewHistoryPaginator(repo repository.ChatRepository) *HistoryPaginator {
	return &HistoryPaginator{repo: repo}
}

// Paginate 并发读取当前页与总数，page/limit 在此再次截断
func (p *HistoryPaginator) Paginate(ctx context.Context, userID uint, page, limit int) (*HistoryPage, error) {
	if userID == 0 {
		return nil, invalid("user_id", "must be a positive identifier")
	}
	page, limit = clampPage(page), clampLimit(limit)
	offset := (page - 1) * limit

	var (
		chats []models.ChatExchange
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chats, err = p.repo.FindPage(gctx, userID, offset, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = p.repo.Count(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, persistence("history", err)
	}

	if chats == nil {
		chats = []models.ChatExchange{}
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &HistoryPage{
		Chats: chats,
		Pagination: Pagination{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}
