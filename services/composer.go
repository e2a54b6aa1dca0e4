package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"counselor_recommend/config"
	"counselor_recommend/logger"
	"counselor_recommend/metrics"
	"counselor_recommend/models"
)

const (
	reasonBookedBefore = "您曾预约过该咨询师，口碑良好。"
	reasonNoKeywords   = "经验丰富，评价良好。"
	reasonSpecialty    = "擅长处理%s问题，有%d年经验。"
	reasonGeneric      = "综合评分高，服务专业。"

	TagAffordable     = "价格亲民"
	TagHighRating     = "高评分"
	TagExperienced    = "经验丰富"
	TagAvailableToday = "今日可约"

	maxReasonMatches = 2
)

// ComposeInput 生成推荐理由和标签所需的请求级数据
type ComposeInput struct {
	Keywords   []string
	HistoryIDs []int64
	Urgent     bool
	Today      time.Time
}

// ResultComposer 为每位咨询师生成推荐理由和标签
type ResultComposer struct {
	availability AvailabilityChecker
	breaker      *gobreaker.CircuitBreaker[[]models.TimeSlot]
	tags         tagConfig
}

type tagConfig struct {
	affordableBelow        float64
	highRatingFrom         float64
	experiencedReviewsOver int
}

// NewResultComposer availability 为 nil 时不做今日可约检查
func NewResultComposer(availability AvailabilityChecker, cfg *config.Config) *ResultComposer {
	t := cfg.Recommend.Tags
	c := &ResultComposer{
		availability: availability,
		tags: tagConfig{
			affordableBelow:        t.AffordableBelow,
			highRatingFrom:         t.HighRatingFrom,
			experiencedReviewsOver: t.ExperiencedReviewsOver,
		},
	}

	a := cfg.Availability
	c.breaker = gobreaker.NewCircuitBreaker[[]models.TimeSlot](gobreaker.Settings{
		Name:        "availability-check",
		MaxRequests: a.MaxRequests,
		Interval:    time.Duration(a.IntervalSec) * time.Second,
		Timeout:     time.Duration(a.TimeoutSec) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= a.FailureThreshold
		},
		// 咨询师不存在或未排班属于业务结果，不计入失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCounselorNotFound) || errors.Is(err, ErrNoSchedule)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Compose 按最终顺序生成结果
func (c *ResultComposer) Compose(ctx context.Context, candidates []models.Candidate, in ComposeInput) []models.RankedCandidate {
	history := make(map[int64]struct{}, len(in.HistoryIDs))
	for _, id := range in.HistoryIDs {
		history[id] = struct{}{}
	}

	out := make([]models.RankedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, models.RankedCandidate{
			Candidate:   cand,
			MatchReason: MatchReason(cand, in.Keywords, history),
			Tags:        c.tagsFor(ctx, cand, in),
		})
	}
	return out
}

// MatchReason 历史预约优先，其次是擅长领域与关键词的匹配
func MatchReason(c models.Candidate, keywords []string, history map[int64]struct{}) string {
	if _, ok := history[c.ID]; ok {
		return reasonBookedBefore
	}
	if len(keywords) == 0 {
		return reasonNoKeywords
	}

	matched := make([]string, 0, maxReasonMatches)
	for _, kw := range keywords {
		if c.Specialties.Contains(kw) {
			matched = append(matched, kw)
			if len(matched) == maxReasonMatches {
				break
			}
		}
	}
	if len(matched) > 0 {
		return fmt.Sprintf(reasonSpecialty, strings.Join(matched, "、"), c.ExperienceYears)
	}
	return reasonGeneric
}

func (c *ResultComposer) tagsFor(ctx context.Context, cand models.Candidate, in ComposeInput) []string {
	tags := make([]string, 0, 4)
	if cand.PricePerHour != nil && *cand.PricePerHour < c.tags.affordableBelow {
		tags = append(tags, TagAffordable)
	}
	if cand.Rating != nil && *cand.Rating >= c.tags.highRatingFrom {
		tags = append(tags, TagHighRating)
	}
	if cand.ReviewCount > c.tags.experiencedReviewsOver {
		tags = append(tags, TagExperienced)
	}
	if in.Urgent && c.availableToday(ctx, cand.ID, in.Today) {
		tags = append(tags, TagAvailableToday)
	}
	return tags
}

// availableToday 查询失败时只记录日志，不影响推荐结果
func (c *ResultComposer) availableToday(ctx context.Context, counselorID int64, today time.Time) bool {
	if c.availability == nil {
		return false
	}

	slots, err := c.breaker.Execute(func() ([]models.TimeSlot, error) {
		return c.availability.CheckAvailability(ctx, counselorID, today)
	})
	if err != nil {
		reason := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = "breaker_open"
		}
		metrics.AvailabilityFailures.WithLabelValues(reason).Inc()
		logger.Warn("检查咨询师今日可约状态失败", "counselor_id", counselorID, "error", err)
		return false
	}

	for _, s := range slots {
		if s.Available {
			return true
		}
	}
	return false
}
