package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"counselor_recommend/models"
)

const (
	DateLayout = "2006-01-02"
	slotLength = 60 // 分钟
)

var (
	ErrCounselorNotFound = errors.New("咨询师不存在")
	ErrNoSchedule        = errors.New("咨询师未设置排班")
	ErrInvalidSchedule   = errors.New("排班数据格式错误")
	ErrInvalidDate       = errors.New("日期格式错误")
)

// AvailabilityService 按排班和已有预约计算某天的可约时段
type AvailabilityService struct {
	counselors CandidateStore
	bookings   BookingStore
	loc        *time.Location
}

func NewAvailabilityService(counselors CandidateStore, bookings BookingStore) *AvailabilityService {
	return &AvailabilityService{counselors: counselors, bookings: bookings, loc: time.Local}
}

// GetAvailableSlots 解析 YYYY-MM-DD 格式的日期并返回当天时段
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, counselorID int64, date string) (*models.AvailableSlots, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	slots, err := s.CheckAvailability(ctx, counselorID, day)
	if err != nil {
		return nil, err
	}
	return &models.AvailableSlots{Date: day.Format(DateLayout), Slots: slots}, nil
}

// CheckAvailability 工作日的每段工作时间按一小时切分，
// 与待确认或已确认预约重叠的时段标记为不可约。非工作日返回空列表。
func (s *AvailabilityService) CheckAvailability(ctx context.Context, counselorID int64, date time.Time) ([]models.TimeSlot, error) {
	schedule, err := s.counselors.GetWorkSchedule(ctx, counselorID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrCounselorNotFound
	}
	if schedule.IsEmpty() {
		return nil, ErrNoSchedule
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if !schedule.WorksOn(isoWeekday(dayStart)) {
		return []models.TimeSlot{}, nil
	}

	windows, err := parseWorkHours(schedule.WorkHours)
	if err != nil {
		return nil, err
	}

	booked, err := s.bookings.GetActiveAppointmentsOn(ctx, counselorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	slots := make([]models.TimeSlot, 0)
	seen := make(map[string]struct{})
	for _, w := range windows {
		for cur := w[0]; cur+slotLength <= w[1]; cur += slotLength {
			slot := models.TimeSlot{StartTime: formatClock(cur), EndTime: formatClock(cur + slotLength)}
			key := slot.StartTime + "-" + slot.EndTime
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			start := dayStart.Add(time.Duration(cur) * time.Minute)
			end := start.Add(slotLength * time.Minute)
			slot.Available = !overlapsAny(booked, start, end)
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func overlapsAny(booked []models.BookedPeriod, start, end time.Time) bool {
	for _, b := range booked {
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return true
		}
	}
	return false
}

// isoWeekday 周一为1，周日为7
func isoWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

// parseWorkHours 转换为当天的分钟区间
func parseWorkHours(hours []models.WorkHour) ([][2]int, error) {
	out := make([][2]int, 0, len(hours))
	for _, h := range hours {
		start, err := parseClock(h.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(h.End)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]int{start, end})
	}
	return out, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
