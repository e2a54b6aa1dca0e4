package services

import (
	"context"
	"fmt"

	"counselor_recommend/models"
)

// CandidateRetriever 获取初始候选咨询师
type CandidateRetriever struct {
	store CandidateStore
}

func NewCandidateRetriever(store CandidateStore) *CandidateRetriever {
	return &CandidateRetriever{store: store}
}

// Retrieve 关键词为空时取全部正常状态的咨询师，否则按擅长领域匹配并排序
func (r *CandidateRetriever) Retrieve(ctx context.Context, keywords []string, sort models.SortMode) ([]models.Candidate, error) {
	var (
		list []models.Candidate
		err  error
	)
	if len(keywords) == 0 {
		list, err = r.store.GetAllActiveCandidates(ctx)
	} else {
		list, err = r.store.SearchCandidatesByKeywords(ctx, keywords, sort)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	if list == nil {
		list = []models.Candidate{}
	}
	return list, nil
}
