package models

import "time"

// MoodRecord 情绪日志，mood_score 取值 0-10
type MoodRecord struct {
	MoodType  string    `json:"moodType"`
	MoodScore int       `json:"moodScore"`
	LogDate   time.Time `json:"logDate"`
}

// Assessment 测评记录
type Assessment struct {
	ScaleKey          string `json:"scaleKey"`
	ResultLevel       string `json:"resultLevel"`
	ResultDescription string `json:"resultDesc"`
}

// UserSignal 单次请求内汇总的用户信号，不持久化
type UserSignal struct {
	RecentMoodRecords []MoodRecord
	LatestAssessment  *Assessment
	// 按完成预约次数降序
	CompletedBookingCounselorIDs []int64
	CompletedBookingCount        int
}

// HasBookings 是否有已完成的预约
func (s *UserSignal) HasBookings() bool {
	return s != nil && s.CompletedBookingCount > 0
}

// TopBookedIDs 返回最多 limit 个最常预约的咨询师ID
func (s *UserSignal) TopBookedIDs(limit int) []int64 {
	if s == nil || limit <= 0 {
		return nil
	}
	if len(s.CompletedBookingCounselorIDs) <= limit {
		return s.CompletedBookingCounselorIDs
	}
	return s.CompletedBookingCounselorIDs[:limit]
}

type PreferenceType string

const (
	PreferencePriceSensitive PreferenceType = "price_sensitive"
	PreferenceQualityFirst   PreferenceType = "quality_first"
	PreferenceBalanced       PreferenceType = "balanced"
)

// UserPreference 根据预约历史推断的消费偏好
type UserPreference struct {
	Type            PreferenceType
	ExperienceLevel int // 已完成预约次数
}
