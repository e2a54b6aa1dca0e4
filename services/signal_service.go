package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"counselor_recommend/config"
	"counselor_recommend/models"
	"counselor_recommend/utils"
)

// SignalCollector 汇总用户的情绪、测评和预约信号
type SignalCollector struct {
	moods        MoodStore
	assessments  AssessmentStore
	bookings     BookingStore
	lookback     time.Duration
	topBookLimit int
}

func NewSignalCollector(moods MoodStore, assessments AssessmentStore, bookings BookingStore, cfg config.RecommendConfig) *SignalCollector {
	return &SignalCollector{
		moods:        moods,
		assessments:  assessments,
		bookings:     bookings,
		lookback:     time.Duration(cfg.MoodLookbackDays) * 24 * time.Hour,
		topBookLimit: max(cfg.CollaborativeLimit, cfg.PreferenceLimit),
	}
}

// Collect 并发读取四类信号，任一读取失败则整体失败。
// userID 非正数时视为匿名用户，返回空信号。
func (c *SignalCollector) Collect(ctx context.Context, userID int64, now time.Time) (*models.UserSignal, error) {
	signal := &models.UserSignal{
		RecentMoodRecords:            []models.MoodRecord{},
		CompletedBookingCounselorIDs: []int64{},
	}
	if userID <= 0 {
		return signal, nil
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := c.moods.GetRecentMoodRecords(gctx, userID, now.Add(-c.lookback))
		if err != nil {
			return fmt.Errorf("load mood records: %w", err)
		}
		if records != nil {
			signal.RecentMoodRecords = records
		}
		return nil
	})
	g.Go(func() error {
		a, err := c.assessments.GetLatestAssessment(gctx, userID)
		if err != nil {
			return fmt.Errorf("load latest assessment: %w", err)
		}
		signal.LatestAssessment = a
		return nil
	})
	g.Go(func() error {
		n, err := c.bookings.GetCompletedBookingCount(gctx, userID)
		if err != nil {
			return fmt.Errorf("count completed bookings: %w", err)
		}
		signal.CompletedBookingCount = n
		return nil
	})
	g.Go(func() error {
		ids, err := c.bookings.GetTopBookedCounselorIDs(gctx, userID, c.topBookLimit)
		if err != nil {
			return fmt.Errorf("load top booked counselors: %w", err)
		}
		if ids != nil {
			signal.CompletedBookingCounselorIDs = ids
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if signal.CompletedBookingCount == 0 {
		signal.CompletedBookingCounselorIDs = []int64{}
	}
	return signal, nil
}

// MoodAnalysis 情绪信号分析结果
type MoodAnalysis struct {
	Average float64
	Urgent  bool
	// 提取到关键词的负面情绪类型，按出现顺序
	NegativeTypes []string
	Keywords      []string
}

// MoodAnalyzer 按词表把情绪日志转换为关键词
type MoodAnalyzer struct {
	moodKeywords map[string][]string
	negative     map[string]struct{}
	threshold    float64
}

func NewMoodAnalyzer(dict config.Dictionary, urgentThreshold float64) *MoodAnalyzer {
	kw := make(map[string][]string, len(dict.MoodKeywords))
	for mood, words := range dict.MoodKeywords {
		kw[mood] = append([]string(nil), words...)
	}
	return &MoodAnalyzer{
		moodKeywords: kw,
		negative:     toSet(dict.NegativeMoods),
		threshold:    urgentThreshold,
	}
}

// Analyze 负面情绪的关键词优先，只有没有任何负面关键词时才使用其他情绪的关键词
func (a *MoodAnalyzer) Analyze(records []models.MoodRecord) MoodAnalysis {
	result := MoodAnalysis{NegativeTypes: []string{}, Keywords: []string{}}
	if len(records) == 0 {
		return result
	}

	sum := 0
	seen := make(map[string]struct{})
	var negatives, others []string
	for _, r := range records {
		sum += r.MoodScore
		if _, ok := seen[r.MoodType]; ok {
			continue
		}
		seen[r.MoodType] = struct{}{}
		if _, neg := a.negative[r.MoodType]; neg {
			negatives = append(negatives, r.MoodType)
		} else {
			others = append(others, r.MoodType)
		}
	}
	result.Average = float64(sum) / float64(len(records))
	result.Urgent = result.Average < a.threshold

	list := utils.NewKeywordList()
	for _, mood := range negatives {
		if words, ok := a.moodKeywords[mood]; ok && len(words) > 0 {
			list.Add(words...)
			result.NegativeTypes = append(result.NegativeTypes, mood)
		}
	}
	if list.Len() == 0 {
		for _, mood := range others {
			list.Add(a.moodKeywords[mood]...)
		}
	}
	result.Keywords = list.Items()
	return result
}
