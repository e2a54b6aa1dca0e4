package models

import "strings"

type Strategy string

const (
	StrategyKeywordSearch   Strategy = "keyword_search"
	StrategyAssessmentBased Strategy = "assessment_based"
	StrategyMoodBased       Strategy = "mood_based"
	StrategyHotList         Strategy = "hot_list"
)

// SortMode 候选咨询师排序方式
type SortMode string

const (
	SortSmart      SortMode = "smart"
	SortPriceAsc   SortMode = "price_asc"
	SortRatingDesc SortMode = "rating_desc"
)

// ParseSortMode 解析排序方式，空值或无法识别时使用 smart
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortRatingDesc:
		return SortRatingDesc
	default:
		return SortSmart
	}
}

// RecommendationContext 推荐上下文，说明本次推荐依据
type RecommendationContext struct {
	Strategy Strategy `json:"strategy"`
	BasedOn  string   `json:"basedOn"`
	UserTags []string `json:"userTags"`
}

// RecommendationResult 推荐结果
type RecommendationResult struct {
	RecommendationContext RecommendationContext `json:"recommendContext"`
	Counselors            []RankedCandidate     `json:"counselors"`
}

// StatusResult 推荐前置状态
type StatusResult struct {
	HasAssessment       bool    `json:"hasAssessment"`
	HasMoodLog          bool    `json:"hasMoodLog"`
	LastAssessmentLevel *string `json:"lastAssessmentLevel"`
	RecommendationReady bool    `json:"recommendationReady"`
}
