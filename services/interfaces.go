package services

import (
	"context"
	"time"

	"counselor_recommend/models"
)

// MoodStore 情绪日志读取
type MoodStore interface {
	// 查询 since 之后的情绪日志，最新的在前
	GetRecentMoodRecords(ctx context.Context, userID int64, since time.Time) ([]models.MoodRecord, error)
	CountMoodRecords(ctx context.Context, userID int64) (int, error)
}

// AssessmentStore 测评记录读取
type AssessmentStore interface {
	// 没有测评记录时返回 nil, nil
	GetLatestAssessment(ctx context.Context, userID int64) (*models.Assessment, error)
	CountAssessments(ctx context.Context, userID int64) (int, error)
}

// BookingStore 预约记录读取
type BookingStore interface {
	GetCompletedBookingCount(ctx context.Context, userID int64) (int, error)
	// 按完成次数降序
	GetTopBookedCounselorIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
	GetActiveAppointmentsOn(ctx context.Context, counselorID int64, dayStart, dayEnd time.Time) ([]models.BookedPeriod, error)
}

// CandidateStore 咨询师资料读取
type CandidateStore interface {
	GetAllActiveCandidates(ctx context.Context) ([]models.Candidate, error)
	SearchCandidatesByKeywords(ctx context.Context, keywords []string, sort models.SortMode) ([]models.Candidate, error)
	// 结果顺序与 ids 一致，不存在的ID被忽略
	GetCandidatesByIDs(ctx context.Context, ids []int64) ([]models.Candidate, error)
	// 咨询师不存在时返回 nil, nil
	GetWorkSchedule(ctx context.Context, counselorID int64) (*models.WorkSchedule, error)
}

// AvailabilityChecker 查询咨询师某天的预约时段
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, counselorID int64, date time.Time) ([]models.TimeSlot, error)
}

// RecommendService 咨询师推荐服务接口
type RecommendService interface {
	// 为用户生成推荐列表
	Recommend(ctx context.Context, req RecommendRequest) (*models.RecommendationResult, error)

	// 检查推荐前置状态
	GetRecommendStatus(ctx context.Context, userID int64) (*models.StatusResult, error)
}
