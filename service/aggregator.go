package service

import (
	"context"
	"math"

	"moodjournal/models"
	"moodjournal/repository"

	"golang.org/x/sync/errgroup"
)

// dashboardRecentLimit 仪表盘展示的最近记录条数
const dashboardRecentLimit = 5

// Dashboard 仪表盘数据
type Dashboard struct {
	TotalChats    int64                 `json:"total_chats"`
	RecentChats   []models.ChatExchange `json:"recent_chats"`
	MoodStats     map[models.Mood]int64 `json:"mood_stats"`
	MoodBreakdown []models.MoodCount    `json:"mood_breakdown"`
}

// MoodStat 单个情绪的数量与占比（百分比，保留两位小数）
type MoodStat struct {
	Mood       models.Mood `json:"mood"`
	Count      int64       `json:"count"`
	Percentage float64     `json:"percentage"`
}

// MoodStatsResult 情绪分布统计
type MoodStatsResult struct {
	Stats []MoodStat `json:"stats"`
	Total int64      `json:"total"`
}

// MoodAggregator 基于存储的情绪统计
type MoodAggregator struct {
	repo repository.ChatRepository
}

func NewMoodAggregator(repo repository.ChatRepository) *MoodAggregator {
	return &MoodAggregator{repo: repo}
}

// Dashboard 并发读取最近记录、情绪分组和总数。三次读取之间不保证一致
func (a *MoodAggregator) Dashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	if userID == 0 {
		return nil, invalid("user_id", "must be a positive identifier")
	}

	var (
		recent  []models.ChatExchange
		grouped []models.MoodCount
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = a.repo.FindRecent(gctx, userID, dashboardRecentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		grouped, err = a.repo.GroupByMood(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = a.repo.Count(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, persistence("dashboard", err)
	}

	stats := make(map[models.Mood]int64, len(grouped))
	for _, mc := range grouped {
		stats[mc.Mood] = mc.Count
	}
	if recent == nil {
		recent = []models.ChatExchange{}
	}
	return &Dashboard{
		TotalChats:    total,
		RecentChats:   recent,
		MoodStats:     stats,
		MoodBreakdown: grouped,
	}, nil
}

// MoodStats 各情绪占比。total 取分组计数之和；未出现的情绪不补零
func (a *MoodAggregator) MoodStats(ctx context.Context, userID uint) (*MoodStatsResult, error) {
	if userID == 0 {
		return nil, invalid("user_id", "must be a positive identifier")
	}
	grouped, err := a.repo.GroupByMood(ctx, userID)
	if err != nil {
		return nil, persistence("mood stats", err)
	}
	return moodStats(grouped), nil
}

func moodStats(grouped []models.MoodCount) *MoodStatsResult {
	var total int64
	for _, mc := range grouped {
		total += mc.Count
	}
	stats := make([]MoodStat, 0, len(grouped))
	for _, mc := range grouped {
		stats = append(stats, MoodStat{
			Mood:       mc.Mood,
			Count:      mc.Count,
			Percentage: Percentage(mc.Count, total),
		})
	}
	return &MoodStatsResult{Stats: stats, Total: total}
}

// Percentage count 占 total 的百分比，保留两位小数；total 为 0 时返回 0
func Percentage(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
