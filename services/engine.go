package services

import (
	"context"
	"fmt"
	"time"

	"counselor_recommend/config"
	"counselor_recommend/logger"
	"counselor_recommend/metrics"
	"counselor_recommend/models"
)

// RecommendRequest 推荐请求
type RecommendRequest struct {
	UserID  int64
	Keyword string // 可选的搜索词
	Sort    string // smart | price_asc | rating_desc，其他值按 smart 处理
}

// EngineDeps 推荐引擎依赖的数据读取接口
type EngineDeps struct {
	Moods        MoodStore
	Assessments  AssessmentStore
	Bookings     BookingStore
	Candidates   CandidateStore
	Availability AvailabilityChecker // 为 nil 时不做今日可约检查
}

// Engine 咨询师推荐流水线。构造后只读，可并发使用。
type Engine struct {
	cfg         config.RecommendConfig
	moods       MoodStore
	assessments AssessmentStore

	collector *SignalCollector
	analyzer  *MoodAnalyzer
	extractor *KeywordExtractor
	expander  *KeywordExpander
	retriever *CandidateRetriever
	stages    []RankStage
	composer  *ResultComposer

	now func() time.Time
}

var _ RecommendService = (*Engine)(nil)

func NewEngine(cfg *config.Config, deps EngineDeps) *Engine {
	rc := cfg.Recommend
	dict := rc.Dictionary

	e := &Engine{
		cfg:         rc,
		moods:       deps.Moods,
		assessments: deps.Assessments,
		collector:   NewSignalCollector(deps.Moods, deps.Assessments, deps.Bookings, rc),
		analyzer:    NewMoodAnalyzer(dict, rc.UrgentMoodThreshold),
		extractor:   NewKeywordExtractor(dict),
		expander:    NewKeywordExpander(dict),
		retriever:   NewCandidateRetriever(deps.Candidates),
		composer:    NewResultComposer(deps.Availability, cfg),
		now:         time.Now,
	}

	if !rc.DisableCollaborative {
		e.stages = append(e.stages, NewCollaborativeAugmenter(deps.Candidates, rc))
	}
	if !rc.DisablePersonalization {
		e.stages = append(e.stages, NewPersonalizationRanker(deps.Candidates, rc))
	}
	if !rc.DisableDiversity {
		e.stages = append(e.stages, NewDiversityController(rc))
	}
	return e
}

// Stages 返回启用的排序阶段名称
func (e *Engine) Stages() []string {
	names := make([]string, 0, len(e.stages))
	for _, s := range e.stages {
		names = append(names, s.Name())
	}
	return names
}

// Recommend 生成推荐结果。数据读取失败时整体失败；今日可约检查失败不影响结果。
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) (result *models.RecommendationResult, err error) {
	started := e.now()
	var strategy models.Strategy
	defer func() {
		size := 0
		if result != nil {
			size = len(result.Counselors)
		}
		metrics.ObserveRecommend(string(strategy), err, size, started)
	}()

	signal, err := e.collector.Collect(ctx, req.UserID, started)
	if err != nil {
		logger.Error("收集用户信号失败", "user_id", req.UserID, "error", err)
		return nil, err
	}

	mood := e.analyzer.Analyze(signal.RecentMoodRecords)
	selection := SelectStrategy(mood, signal.LatestAssessment, req.Keyword, e.extractor)
	strategy = selection.Context.Strategy
	keywords := e.expander.Expand(selection.Keywords)
	sort := models.ParseSortMode(req.Sort)

	logger.Info("推荐策略",
		"user_id", req.UserID,
		"strategy", strategy,
		"based_on", selection.Context.BasedOn,
		"mood_avg", mood.Average,
		"urgent", mood.Urgent,
		"keywords", keywords,
		"sort", sort)

	candidates, err := e.retriever.Retrieve(ctx, keywords, sort)
	if err != nil {
		logger.Error("查询候选咨询师失败", "user_id", req.UserID, "error", err)
		return nil, err
	}

	for _, stage := range e.stages {
		next, err := stage.Apply(ctx, RankInput{
			Signal:     signal,
			Sort:       sort,
			Keywords:   keywords,
			Candidates: candidates,
		})
		if err != nil {
			logger.Error("排序阶段失败", "stage", stage.Name(), "user_id", req.UserID, "error", err)
			return nil, fmt.Errorf("%s stage: %w", stage.Name(), err)
		}
		if !sameOrder(candidates, next) {
			metrics.StageApplied.WithLabelValues(stage.Name()).Inc()
			logger.Debug("排序阶段调整了候选列表", "stage", stage.Name(), "before", len(candidates), "after", len(next))
		}
		candidates = next
	}
	candidates = capUnique(candidates, e.cfg.MaxResults)

	counselors := e.composer.Compose(ctx, candidates, ComposeInput{
		Keywords:   keywords,
		HistoryIDs: signal.TopBookedIDs(e.cfg.CollaborativeLimit),
		Urgent:     mood.Urgent,
		Today:      started,
	})

	logger.Info("推荐完成", "user_id", req.UserID, "strategy", strategy, "count", len(counselors))
	return &models.RecommendationResult{
		RecommendationContext: selection.Context,
		Counselors:            counselors,
	}, nil
}

// GetRecommendStatus 只根据记录数量判断是否具备推荐条件
func (e *Engine) GetRecommendStatus(ctx context.Context, userID int64) (*models.StatusResult, error) {
	assessments, err := e.assessments.CountAssessments(ctx, userID)
	if err != nil {
		return nil, err
	}
	moods, err := e.moods.CountMoodRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &models.StatusResult{
		HasAssessment: assessments > 0,
		HasMoodLog:    moods > 0,
	}
	if status.HasAssessment {
		latest, err := e.assessments.GetLatestAssessment(ctx, userID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			level := latest.ResultLevel
			status.LastAssessmentLevel = &level
		}
	}
	status.RecommendationReady = status.HasAssessment || status.HasMoodLog
	return status, nil
}

// capUnique 按ID去重并截断
func capUnique(list []models.Candidate, limit int) []models.Candidate {
	out := make([]models.Candidate, 0, min(len(list), limit))
	seen := make(map[int64]struct{}, len(list))
	for _, c := range list {
		if len(out) >= limit {
			break
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func sameOrder(a, b []models.Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
