package services

import (
	"strings"

	"counselor_recommend/models"
	"counselor_recommend/utils"
)

const (
	UrgentTag = "紧急"

	basedOnHotList     = "热门咨询师列表"
	basedOnMood        = "近期情绪状态分析"
	basedOnSearchLabel = "搜索关键词："
)

// StrategySelection 策略选择结果，Keywords 尚未扩展
type StrategySelection struct {
	Context  models.RecommendationContext
	Keywords []string
}

// SelectStrategy 依次考虑情绪、测评和搜索词，后者覆盖前者的策略和关键词，
// 用户标签只累加不丢弃
func SelectStrategy(mood MoodAnalysis, assessment *models.Assessment, term string, extractor *KeywordExtractor) StrategySelection {
	ctx := models.RecommendationContext{
		Strategy: models.StrategyHotList,
		BasedOn:  basedOnHotList,
		UserTags: []string{},
	}
	keywords := utils.NewKeywordList()

	if mood.Urgent {
		ctx.UserTags = append(ctx.UserTags, UrgentTag)
	}
	ctx.UserTags = append(ctx.UserTags, mood.NegativeTypes...)

	if len(mood.Keywords) > 0 {
		keywords.Add(mood.Keywords...)
		ctx.Strategy = models.StrategyMoodBased
		ctx.BasedOn = basedOnMood
		if len(mood.NegativeTypes) > 0 {
			ctx.BasedOn = basedOnMood + "（" + strings.Join(mood.NegativeTypes, "、") + "）"
		}
	}

	if assessment != nil {
		if level := strings.TrimSpace(assessment.ResultLevel); level != "" {
			ctx.UserTags = append(ctx.UserTags, level)
			if extracted := extractor.Extract(level); len(extracted) > 0 {
				keywords.Reset()
				keywords.Add(extracted...)
				ctx.Strategy = models.StrategyAssessmentBased
				ctx.BasedOn = strings.TrimSpace(strings.TrimSpace(assessment.ScaleKey) + " " + level)
			}
		}
	}

	if term = utils.NormalizeTerm(term); term != "" {
		keywords.Reset()
		keywords.Add(term)
		ctx.Strategy = models.StrategyKeywordSearch
		ctx.BasedOn = basedOnSearchLabel + term
	}

	return StrategySelection{Context: ctx, Keywords: keywords.Items()}
}
