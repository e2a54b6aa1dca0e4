package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"counselor_recommend/config"
	"counselor_recommend/models"
)

// RankInput 排序阶段的输入，各阶段只读
type RankInput struct {
	Signal     *models.UserSignal
	Sort       models.SortMode
	Keywords   []string
	Candidates []models.Candidate
}

// RankStage 可选的排序阶段。Apply 返回新的候选序列，不修改输入。
type RankStage interface {
	Name() string
	Apply(ctx context.Context, in RankInput) ([]models.Candidate, error)
}

// =====================
// 协同过滤补充
// =====================

// CollaborativeAugmenter 候选不足时用用户自己常约的咨询师补足
type CollaborativeAugmenter struct {
	store  CandidateStore
	limit  int
	target int
}

func NewCollaborativeAugmenter(store CandidateStore, cfg config.RecommendConfig) *CollaborativeAugmenter {
	return &CollaborativeAugmenter{store: store, limit: cfg.CollaborativeLimit, target: cfg.MaxResults}
}

func (a *CollaborativeAugmenter) Name() string { return "collaborative" }

func (a *CollaborativeAugmenter) Apply(ctx context.Context, in RankInput) ([]models.Candidate, error) {
	if !in.Signal.HasBookings() || len(in.Candidates) >= a.target {
		return in.Candidates, nil
	}
	ids := in.Signal.TopBookedIDs(a.limit)
	if len(ids) == 0 {
		return in.Candidates, nil
	}

	history, err := a.store.GetCandidatesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load booked counselors: %w", err)
	}

	out := slices.Clone(in.Candidates)
	present := make(map[int64]struct{}, len(out))
	for _, c := range out {
		present[c.ID] = struct{}{}
	}
	for _, c := range history {
		if len(out) >= a.target {
			break
		}
		if _, ok := present[c.ID]; ok {
			continue
		}
		present[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// =====================
// 个性化排序
// =====================

// PersonalizationRanker 按用户历史预约的价格、评分偏好重新排序
type PersonalizationRanker struct {
	store CandidateStore
	limit int
	cfg   personalizationConfig
}

type personalizationConfig struct {
	priceSensitiveBelow float64
	qualityFirstRating  float64
	defaultPrice        float64
	defaultRating       float64
}

func NewPersonalizationRanker(store CandidateStore, cfg config.RecommendConfig) *PersonalizationRanker {
	p := cfg.Personalization
	return &PersonalizationRanker{
		store: store,
		limit: cfg.PreferenceLimit,
		cfg: personalizationConfig{
			priceSensitiveBelow: p.PriceSensitiveBelow,
			qualityFirstRating:  p.QualityFirstRating,
			defaultPrice:        p.DefaultPrice,
			defaultRating:       p.DefaultRating,
		},
	}
}

func (r *PersonalizationRanker) Name() string { return "personalization" }

// Apply 仅 smart 排序时生效，balanced 偏好不调整顺序
func (r *PersonalizationRanker) Apply(ctx context.Context, in RankInput) ([]models.Candidate, error) {
	if in.Sort != models.SortSmart {
		return in.Candidates, nil
	}
	pref, err := r.InferPreference(ctx, in.Signal)
	if err != nil {
		return nil, err
	}
	if pref.Type == models.PreferenceBalanced {
		return in.Candidates, nil
	}
	return r.Rank(in.Candidates, pref), nil
}

// InferPreference 根据最常预约的咨询师的平均价格和评分推断偏好
func (r *PersonalizationRanker) InferPreference(ctx context.Context, signal *models.UserSignal) (models.UserPreference, error) {
	if !signal.HasBookings() {
		return models.UserPreference{Type: models.PreferenceBalanced}, nil
	}
	pref := models.UserPreference{Type: models.PreferenceBalanced, ExperienceLevel: signal.CompletedBookingCount}

	ids := signal.TopBookedIDs(r.limit)
	if len(ids) == 0 {
		return pref, nil
	}
	history, err := r.store.GetCandidatesByIDs(ctx, ids)
	if err != nil {
		return pref, fmt.Errorf("load booked counselors: %w", err)
	}
	if len(history) == 0 {
		return pref, nil
	}

	avgPrice := average(history, func(c models.Candidate) *float64 { return c.PricePerHour }, r.cfg.defaultPrice)
	avgRating := average(history, func(c models.Candidate) *float64 { return c.Rating }, r.cfg.defaultRating)

	switch {
	case avgPrice < r.cfg.priceSensitiveBelow:
		pref.Type = models.PreferencePriceSensitive
	case avgRating >= r.cfg.qualityFirstRating:
		pref.Type = models.PreferenceQualityFirst
	}
	return pref, nil
}

// Rank 按个性化得分降序稳定排序，返回新切片
func (r *PersonalizationRanker) Rank(candidates []models.Candidate, pref models.UserPreference) []models.Candidate {
	type scored struct {
		c     models.Candidate
		score float64
	}
	items := make([]scored, len(candidates))
	for i, c := range candidates {
		items[i] = scored{c: c, score: PersonalizedScore(c, pref)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	out := make([]models.Candidate, len(items))
	for i, it := range items {
		out[i] = it.c
	}
	return out
}

// PersonalizedScore 评分*20，价格敏感加 (500-价格)/10，质量优先加 min(50, 评价数/2)
func PersonalizedScore(c models.Candidate, pref models.UserPreference) float64 {
	score := 0.0
	if c.Rating != nil {
		score += *c.Rating * 20
	}
	switch pref.Type {
	case models.PreferencePriceSensitive:
		if c.PricePerHour != nil {
			score += math.Max(0, (500-*c.PricePerHour)/10)
		}
	case models.PreferenceQualityFirst:
		score += math.Min(50, float64(c.ReviewCount)/2)
	}
	return score
}

func average(list []models.Candidate, field func(models.Candidate) *float64, fallback float64) float64 {
	sum, n := 0.0, 0
	for _, c := range list {
		if v := field(c); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

// =====================
// 多样性控制
// =====================

// DiversityController 前 head 个保持匹配顺序，其余位置贪心选择与已选结果差异最大的咨询师
type DiversityController struct {
	head          int
	max           int
	priceDivisor  float64
	locationBonus float64
}

func NewDiversityController(cfg config.RecommendConfig) *DiversityController {
	return &DiversityController{
		head:          cfg.Diversity.HeadSize,
		max:           cfg.MaxResults,
		priceDivisor:  cfg.Diversity.PriceDivisor,
		locationBonus: cfg.Diversity.LocationBonus,
	}
}

func (d *DiversityController) Name() string { return "diversity" }

func (d *DiversityController) Apply(_ context.Context, in RankInput) ([]models.Candidate, error) {
	return d.Select(in.Candidates), nil
}

// Select 候选数不超过 head 时原样返回
func (d *DiversityController) Select(candidates []models.Candidate) []models.Candidate {
	if len(candidates) <= d.head {
		return candidates
	}

	selected := make([]models.Candidate, 0, d.max)
	selected = append(selected, candidates[:min(d.head, d.max)]...)
	remaining := slices.Clone(candidates[d.head:])

	for len(selected) < d.max && len(remaining) > 0 {
		best, bestScore := -1, -1.0
		for i, c := range remaining {
			if s := d.Score(c, selected); s > bestScore {
				best, bestScore = i, s
			}
		}
		if best < 0 {
			break
		}
		selected = append(selected, remaining[best])
		remaining = slices.Delete(remaining, best, best+1)
	}
	return selected
}

// Score 候选与所有已选咨询师的差异之和：
// 擅长领域中未重叠的数量，价格差/priceDivisor（双方都有价格时），地区不同时加 locationBonus
func (d *DiversityController) Score(c models.Candidate, selected []models.Candidate) float64 {
	score := 0.0
	for _, s := range selected {
		overlap := 0
		for _, sp := range c.Specialties {
			if s.Specialties.Contains(sp) {
				overlap++
			}
		}
		score += float64(len(c.Specialties) - overlap)

		if c.PricePerHour != nil && s.PricePerHour != nil {
			score += math.Abs(*c.PricePerHour-*s.PricePerHour) / d.priceDivisor
		}
		if c.Location != "" && s.Location != "" && c.Location != s.Location {
			score += d.locationBonus
		}
	}
	return score
}
