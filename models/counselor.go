package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"counselor_recommend/logger"
)

// Candidate 可被推荐的咨询师资料，只读
type Candidate struct {
	ID              int64         `json:"id"`
	RealName        string        `json:"realName"`
	Avatar          string        `json:"avatar,omitempty"`
	Title           string        `json:"title"`
	ExperienceYears int           `json:"experienceYears"`
	Specialties     SpecialtyList `json:"specialty"`
	Bio             string        `json:"bio,omitempty"`
	Rating          *float64      `json:"rating,omitempty"`
	ReviewCount     int           `json:"reviewCount"`
	PricePerHour    *float64      `json:"pricePerHour,omitempty"`
	Location        string        `json:"location"`
}

// RankedCandidate 带推荐理由和标签的咨询师
type RankedCandidate struct {
	Candidate
	MatchReason string   `json:"matchReason"`
	Tags        []string `json:"tags"`
}

// SpecialtyList 擅长领域列表，数据库中以JSON数组存储
type SpecialtyList []string

// Scan 实现 sql.Scanner。解析失败时记录日志并返回空列表，不向上抛错。
func (s *SpecialtyList) Scan(src any) error {
	*s = SpecialtyList{}

	raw, ok := asBytes(src)
	if !ok || len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		logger.Warn("解析擅长领域JSON失败", "raw", string(raw), "error", err)
		return nil
	}

	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			*s = append(*s, item)
		}
	}
	return nil
}

// Value 实现 driver.Valuer
func (s SpecialtyList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Contains 判断是否包含某个领域（精确匹配）
func (s SpecialtyList) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// WorkHour 一段工作时间，格式 HH:MM
type WorkHour struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkSchedule 咨询师排班：WorkDays 取值 1-7（周一为1）
type WorkSchedule struct {
	WorkDays  []int      `json:"workDays"`
	WorkHours []WorkHour `json:"workHours"`
}

// Scan 实现 sql.Scanner。与擅长领域不同，排班格式错误需要上报。
func (w *WorkSchedule) Scan(src any) error {
	*w = WorkSchedule{}

	raw, ok := asBytes(src)
	if !ok || len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, w); err != nil {
		return fmt.Errorf("排班数据格式错误: %w", err)
	}
	return nil
}

// IsEmpty 是否未设置排班
func (w WorkSchedule) IsEmpty() bool {
	return len(w.WorkDays) == 0 && len(w.WorkHours) == 0
}

// WorksOn 判断某个星期几（1-7）是否工作
func (w WorkSchedule) WorksOn(weekday int) bool {
	for _, d := range w.WorkDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// TimeSlot 一个可预约时段
type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// AvailableSlots 某天的时段列表
type AvailableSlots struct {
	Date  string     `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

// BookedPeriod 已占用的预约时间段
type BookedPeriod struct {
	StartTime time.Time
	EndTime   time.Time
}

func asBytes(src any) ([]byte, bool) {
	switch v := src.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
