package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"counselor_recommend/models"
)

// memStore 内存实现的数据读取接口
type memStore struct {
	mu sync.Mutex

	moods       map[int64][]models.MoodRecord
	assessments map[int64][]models.Assessment // 最新的在前
	completed   map[int64]int
	topBooked   map[int64][]int64

	candidates   []models.Candidate // 热门列表顺序
	inactive     map[int64]models.Candidate
	schedules    map[int64]*models.WorkSchedule
	appointments map[int64][]models.BookedPeriod

	err error

	allCalls     int
	searchCalls  int
	lastKeywords []string
	lastSort     models.SortMode
}

func newMemStore() *memStore {
	return &memStore{
		moods:        map[int64][]models.MoodRecord{},
		assessments:  map[int64][]models.Assessment{},
		completed:    map[int64]int{},
		topBooked:    map[int64][]int64{},
		inactive:     map[int64]models.Candidate{},
		schedules:    map[int64]*models.WorkSchedule{},
		appointments: map[int64][]models.BookedPeriod{},
	}
}

func (s *memStore) GetRecentMoodRecords(_ context.Context, userID int64, since time.Time) ([]models.MoodRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []models.MoodRecord{}
	for _, r := range s.moods[userID] {
		if !r.LogDate.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) CountMoodRecords(_ context.Context, userID int64) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return len(s.moods[userID]), nil
}

func (s *memStore) GetLatestAssessment(_ context.Context, userID int64) (*models.Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	list := s.assessments[userID]
	if len(list) == 0 {
		return nil, nil
	}
	a := list[0]
	return &a, nil
}

func (s *memStore) CountAssessments(_ context.Context, userID int64) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return len(s.assessments[userID]), nil
}

func (s *memStore) GetCompletedBookingCount(_ context.Context, userID int64) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.completed[userID], nil
}

func (s *memStore) GetTopBookedCounselorIDs(_ context.Context, userID int64, limit int) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	ids := s.topBooked[userID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return append([]int64{}, ids...), nil
}

func (s *memStore) GetActiveAppointmentsOn(_ context.Context, counselorID int64, dayStart, dayEnd time.Time) ([]models.BookedPeriod, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []models.BookedPeriod{}
	for _, p := range s.appointments[counselorID] {
		if !p.StartTime.Before(dayStart) && p.StartTime.Before(dayEnd) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) GetAllActiveCandidates(context.Context) ([]models.Candidate, error) {
	s.mu.Lock()
	s.allCalls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Candidate{}, s.candidates...), nil
}

// SearchCandidatesByKeywords 模拟 LIKE 匹配，保持热门列表顺序
func (s *memStore) SearchCandidatesByKeywords(_ context.Context, keywords []string, sort models.SortMode) ([]models.Candidate, error) {
	s.mu.Lock()
	s.searchCalls++
	s.lastKeywords = append([]string{}, keywords...)
	s.lastSort = sort
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Candidate{}
	for _, c := range s.candidates {
		if matchesAny(c.Specialties, keywords) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetCandidatesByIDs(_ context.Context, ids []int64) ([]models.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Candidate{}
	for _, id := range ids {
		for _, c := range s.candidates {
			if c.ID == id {
				out = append(out, c)
				break
			}
		}
		if c, ok := s.inactive[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetWorkSchedule(_ context.Context, counselorID int64) (*models.WorkSchedule, error) {
	if s.err != nil {
		return nil, s.err
	}
	ws, ok := s.schedules[counselorID]
	if !ok {
		return nil, nil
	}
	return ws, nil
}

func matchesAny(specialties models.SpecialtyList, keywords []string) bool {
	for _, sp := range specialties {
		for _, kw := range keywords {
			if strings.Contains(sp, kw) {
				return true
			}
		}
	}
	return false
}

// fakeAvailability 可约时段检查
type fakeAvailability struct {
	slots map[int64][]models.TimeSlot
	err   error
	calls int
}

func (f *fakeAvailability) CheckAvailability(_ context.Context, counselorID int64, _ time.Time) ([]models.TimeSlot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.slots[counselorID], nil
}

func fptr(v float64) *float64 { return &v }

func counselor(id int64, specialties []string, price, rating float64, reviews int, location string) models.Candidate {
	return models.Candidate{
		ID:              id,
		RealName:        "咨询师",
		ExperienceYears: int(id % 10),
		Specialties:     models.SpecialtyList(specialties),
		Rating:          fptr(rating),
		ReviewCount:     reviews,
		PricePerHour:    fptr(price),
		Location:        location,
	}
}

func ids(list []models.Candidate) []int64 {
	out := make([]int64, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func rankedIDs(list []models.RankedCandidate) []int64 {
	out := make([]int64, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}
