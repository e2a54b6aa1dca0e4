package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counselor_recommend/config"
	"counselor_recommend/models"
)

var testNow = time.Date(2026, 3, 9, 15, 0, 0, 0, time.Local) // 周一

func moods(scores map[string][]int) []models.MoodRecord {
	var out []models.MoodRecord
	offset := 0
	for _, mood := range []string{"Sad", "Anxious", "Angry", "Tired", "Happy", "Calm", "Excited"} {
		for _, s := range scores[mood] {
			offset++
			out = append(out, models.MoodRecord{MoodType: mood, MoodScore: s, LogDate: testNow.Add(-time.Duration(offset) * time.Hour)})
		}
	}
	return out
}

func TestMoodAnalyzer(t *testing.T) {
	a := NewMoodAnalyzer(config.DefaultDictionary(), 4.0)

	t.Run("no records", func(t *testing.T) {
		got := a.Analyze(nil)
		assert.False(t, got.Urgent)
		assert.Empty(t, got.Keywords)
		assert.Empty(t, got.NegativeTypes)
	})

	t.Run("sad and low", func(t *testing.T) {
		got := a.Analyze(moods(map[string][]int{"Sad": {3, 3, 3}}))
		assert.InDelta(t, 3.0, got.Average, 1e-9)
		assert.True(t, got.Urgent)
		assert.Equal(t, []string{"Sad"}, got.NegativeTypes)
		assert.Equal(t, []string{"抑郁", "情绪低落", "悲伤", "失落"}, got.Keywords)
	})

	t.Run("negative keywords take priority", func(t *testing.T) {
		got := a.Analyze(moods(map[string][]int{"Anxious": {6}, "Happy": {9, 9}}))
		assert.False(t, got.Urgent)
		assert.Equal(t, []string{"Anxious"}, got.NegativeTypes)
		assert.Equal(t, []string{"焦虑", "紧张", "担忧", "恐慌"}, got.Keywords)
	})

	t.Run("several negatives in first seen order", func(t *testing.T) {
		got := a.Analyze(moods(map[string][]int{"Sad": {2}, "Tired": {2}}))
		assert.Equal(t, []string{"Sad", "Tired"}, got.NegativeTypes)
		assert.Equal(t, []string{"抑郁", "情绪低落", "悲伤", "失落", "压力", "疲惫", "倦怠", "失眠"}, got.Keywords)
	})

	t.Run("positive only", func(t *testing.T) {
		got := a.Analyze(moods(map[string][]int{"Happy": {8}, "Calm": {7}}))
		assert.Empty(t, got.NegativeTypes)
		assert.Equal(t, []string{"积极心理", "心理健康", "压力管理", "放松技巧"}, got.Keywords)
	})

	t.Run("threshold is exclusive", func(t *testing.T) {
		got := a.Analyze(moods(map[string][]int{"Calm": {4, 4}}))
		assert.False(t, got.Urgent)
	})

	t.Run("unknown mood type", func(t *testing.T) {
		got := a.Analyze([]models.MoodRecord{{MoodType: "Bored", MoodScore: 5, LogDate: testNow}})
		assert.Empty(t, got.Keywords)
	})
}

func TestSignalCollectorCollect(t *testing.T) {
	store := newMemStore()
	store.moods[1] = []models.MoodRecord{
		{MoodType: "Sad", MoodScore: 3, LogDate: testNow.Add(-time.Hour)},
		{MoodType: "Happy", MoodScore: 9, LogDate: testNow.AddDate(0, 0, -10)}, // 超出窗口
	}
	store.assessments[1] = []models.Assessment{{ScaleKey: "PHQ-9", ResultLevel: "中度抑郁"}}
	store.completed[1] = 4
	store.topBooked[1] = []int64{7, 8, 9, 10, 11, 12}

	cfg := config.Default().Recommend
	c := NewSignalCollector(store, store, store, cfg)

	signal, err := c.Collect(context.Background(), 1, testNow)
	require.NoError(t, err)
	assert.Len(t, signal.RecentMoodRecords, 1)
	require.NotNil(t, signal.LatestAssessment)
	assert.Equal(t, "中度抑郁", signal.LatestAssessment.ResultLevel)
	assert.Equal(t, 4, signal.CompletedBookingCount)
	assert.Equal(t, []int64{7, 8, 9, 10, 11}, signal.CompletedBookingCounselorIDs, "fetches max(collaborative, preference) ids")
}

func TestSignalCollectorEmptyHistory(t *testing.T) {
	c := NewSignalCollector(newMemStore(), newMemStore(), newMemStore(), config.Default().Recommend)

	signal, err := c.Collect(context.Background(), 42, testNow)
	require.NoError(t, err)
	assert.Empty(t, signal.RecentMoodRecords)
	assert.Nil(t, signal.LatestAssessment)
	assert.Zero(t, signal.CompletedBookingCount)
	assert.Empty(t, signal.CompletedBookingCounselorIDs)
	assert.False(t, signal.HasBookings())
}

func TestSignalCollectorAnonymousUser(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("should not be called")
	c := NewSignalCollector(store, store, store, config.Default().Recommend)

	signal, err := c.Collect(context.Background(), 0, testNow)
	require.NoError(t, err)
	assert.False(t, signal.HasBookings())
}

func TestSignalCollectorPropagatesErrors(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("mysql gone away")
	c := NewSignalCollector(store, store, store, config.Default().Recommend)

	_, err := c.Collect(context.Background(), 1, testNow)
	assert.ErrorIs(t, err, store.err)
}

func TestSignalCollectorDropsIDsWithoutCompletedBookings(t *testing.T) {
	store := newMemStore()
	store.topBooked[1] = []int64{3}
	c := NewSignalCollector(store, store, store, config.Default().Recommend)

	signal, err := c.Collect(context.Background(), 1, testNow)
	require.NoError(t, err)
	assert.Empty(t, signal.CompletedBookingCounselorIDs)
}
