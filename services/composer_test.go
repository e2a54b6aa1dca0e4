package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counselor_recommend/config"
	"counselor_recommend/models"
)

func TestMatchReason(t *testing.T) {
	c := counselor(8, []string{"焦虑", "失眠", "抑郁"}, 300, 4.5, 10, "")
	history := map[int64]struct{}{8: {}}

	assert.Equal(t, "您曾预约过该咨询师，口碑良好。", MatchReason(c, []string{"焦虑"}, history))
	assert.Equal(t, "经验丰富，评价良好。", MatchReason(c, nil, nil))
	assert.Equal(t, "擅长处理抑郁、焦虑问题，有8年经验。", MatchReason(c, []string{"抑郁", "婚姻", "焦虑", "失眠"}, nil))
	assert.Equal(t, "擅长处理失眠问题，有8年经验。", MatchReason(c, []string{"失眠"}, nil))
	assert.Equal(t, "综合评分高，服务专业。", MatchReason(c, []string{"婚姻"}, nil))
}

func TestComposeTags(t *testing.T) {
	composer := NewResultComposer(nil, config.Default())

	tests := []struct {
		name string
		c    models.Candidate
		want []string
	}{
		{name: "all", c: counselor(1, nil, 299, 4.8, 51, ""), want: []string{"价格亲民", "高评分", "经验丰富"}},
		{name: "boundaries", c: counselor(2, nil, 300, 4.79, 50, ""), want: []string{}},
		{name: "missing values", c: models.Candidate{ID: 3}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := composer.Compose(context.Background(), []models.Candidate{tt.c}, ComposeInput{Urgent: true, Today: testNow})
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Tags)
		})
	}
}

func TestComposeAvailableToday(t *testing.T) {
	avail := &fakeAvailability{slots: map[int64][]models.TimeSlot{
		1: {{StartTime: "09:00", EndTime: "10:00", Available: false}, {StartTime: "10:00", EndTime: "11:00", Available: true}},
		2: {{StartTime: "09:00", EndTime: "10:00", Available: false}},
	}}
	composer := NewResultComposer(avail, config.Default())
	cands := []models.Candidate{
		counselor(1, nil, 500, 4, 1, ""),
		counselor(2, nil, 500, 4, 1, ""),
		counselor(3, nil, 500, 4, 1, ""),
	}

	out := composer.Compose(context.Background(), cands, ComposeInput{Urgent: true, Today: testNow})
	assert.Equal(t, []string{"今日可约"}, out[0].Tags)
	assert.Empty(t, out[1].Tags, "fully booked day")
	assert.Empty(t, out[2].Tags, "no slots")
	assert.Equal(t, 3, avail.calls)

	avail.calls = 0
	out = composer.Compose(context.Background(), cands, ComposeInput{Urgent: false, Today: testNow})
	assert.Empty(t, out[0].Tags)
	assert.Zero(t, avail.calls, "availability is only checked for urgent users")
}

func TestComposeSwallowsAvailabilityErrors(t *testing.T) {
	avail := &fakeAvailability{err: errors.New("booking service down")}
	cfg := config.Default()
	cfg.Availability.FailureThreshold = 2
	composer := NewResultComposer(avail, cfg)

	var cands []models.Candidate
	for i := 1; i <= 5; i++ {
		cands = append(cands, counselor(int64(i), nil, 200, 4.9, 60, ""))
	}

	out := composer.Compose(context.Background(), cands, ComposeInput{Urgent: true, Today: testNow})
	require.Len(t, out, 5)
	for _, rc := range out {
		assert.Equal(t, []string{"价格亲民", "高评分", "经验丰富"}, rc.Tags)
	}
	assert.Equal(t, 2, avail.calls, "breaker opens after consecutive failures")
}

func TestComposeMissingScheduleDoesNotTripBreaker(t *testing.T) {
	avail := &fakeAvailability{err: fmt.Errorf("load: %w", ErrNoSchedule)}
	cfg := config.Default()
	cfg.Availability.FailureThreshold = 1
	composer := NewResultComposer(avail, cfg)

	cands := []models.Candidate{counselor(1, nil, 500, 4, 1, ""), counselor(2, nil, 500, 4, 1, "")}
	composer.Compose(context.Background(), cands, ComposeInput{Urgent: true, Today: testNow})
	assert.Equal(t, 2, avail.calls)
}

func TestComposeKeepsOrderAndReasons(t *testing.T) {
	composer := NewResultComposer(nil, config.Default())
	cands := []models.Candidate{
		counselor(3, []string{"焦虑"}, 500, 4, 1, ""),
		counselor(9, []string{"婚姻"}, 500, 4, 1, ""),
	}
	out := composer.Compose(context.Background(), cands, ComposeInput{Keywords: []string{"焦虑"}, HistoryIDs: []int64{9}})
	assert.Equal(t, []int64{3, 9}, rankedIDs(out))
	assert.Equal(t, "擅长处理焦虑问题，有3年经验。", out[0].MatchReason)
	assert.Equal(t, "您曾预约过该咨询师，口碑良好。", out[1].MatchReason)
}
