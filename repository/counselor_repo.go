package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"counselor_recommend/models"
	"counselor_recommend/utils"
)

const candidateColumns = `
	cp.user_id, cp.real_name, u.avatar, cp.title, cp.experience_years, cp.specialty,
	cp.bio, cp.rating, cp.review_count, cp.price_per_hour, cp.location`

const activeCandidateFrom = `
	FROM counselor_profile cp
	JOIN sys_user u ON u.id = cp.user_id
	WHERE u.status = 1`

// 热门列表排序：评分、评价数
const hotListOrder = ` ORDER BY cp.rating IS NULL, cp.rating DESC, cp.review_count DESC, cp.user_id ASC`

// CounselorRepository 咨询师资料查询
type CounselorRepository struct {
	db *sql.DB
}

func NewCounselorRepository(conn *sql.DB) *CounselorRepository {
	return &CounselorRepository{db: conn}
}

// GetAllActiveCandidates 查询所有正常状态的咨询师
func (r *CounselorRepository) GetAllActiveCandidates(ctx context.Context) ([]models.Candidate, error) {
	q := "SELECT" + candidateColumns + activeCandidateFrom + hotListOrder
	return r.queryCandidates(ctx, q)
}

// SearchCandidatesByKeywords 按擅长领域模糊匹配任一关键词
func (r *CounselorRepository) SearchCandidatesByKeywords(ctx context.Context, keywords []string, sort models.SortMode) ([]models.Candidate, error) {
	keywords = utils.DeduplicateSlice(keywords)
	if len(keywords) == 0 {
		return []models.Candidate{}, nil
	}

	likes := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		likes = append(likes, "cp.specialty LIKE ?")
		args = append(args, likeContains(kw))
	}

	q := "SELECT" + candidateColumns + activeCandidateFrom +
		" AND (" + strings.Join(likes, " OR ") + ")" + orderClause(sort)
	return r.queryCandidates(ctx, q, args...)
}

// GetCandidatesByIDs 按ID批量查询，结果顺序与 ids 一致
func (r *CounselorRepository) GetCandidatesByIDs(ctx context.Context, ids []int64) ([]models.Candidate, error) {
	if len(ids) == 0 {
		return []models.Candidate{}, nil
	}

	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	q := "SELECT" + candidateColumns + activeCandidateFrom +
		" AND cp.user_id IN (" + placeholders(len(ids)) + ")"

	found, err := r.queryCandidates(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Candidate, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	out := make([]models.Candidate, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
			delete(byID, id)
		}
	}
	return out, nil
}

// GetWorkSchedule 查询排班，咨询师不存在时返回 nil, nil
func (r *CounselorRepository) GetWorkSchedule(ctx context.Context, counselorID int64) (*models.WorkSchedule, error) {
	var ws models.WorkSchedule
	err := r.db.QueryRowContext(ctx,
		`SELECT work_schedule FROM counselor_profile WHERE user_id = ?`, counselorID).Scan(&ws)
	if err != nil {
		if utils.IsSQLNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query work schedule of counselor %d: %w", counselorID, err)
	}
	return &ws, nil
}

func (r *CounselorRepository) queryCandidates(ctx context.Context, query string, args ...interface{}) ([]models.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

func scanCandidate(rows *sql.Rows) (models.Candidate, error) {
	var (
		c                            models.Candidate
		avatar, title, bio, location sql.NullString
		experience, reviews          sql.NullInt64
		rating, price                sql.NullFloat64
	)
	err := rows.Scan(&c.ID, &c.RealName, &avatar, &title, &experience, &c.Specialties,
		&bio, &rating, &reviews, &price, &location)
	if err != nil {
		return c, err
	}

	c.Avatar = avatar.String
	c.Title = title.String
	c.Bio = bio.String
	c.Location = location.String
	c.ExperienceYears = int(experience.Int64)
	c.ReviewCount = int(reviews.Int64)
	if rating.Valid {
		v := rating.Float64
		c.Rating = &v
	}
	if price.Valid {
		v := price.Float64
		c.PricePerHour = &v
	}
	return c, nil
}

// orderClause 排序方式对应的 ORDER BY，未知值按 smart 处理
func orderClause(sort models.SortMode) string {
	switch sort {
	case models.SortPriceAsc:
		return ` ORDER BY cp.price_per_hour IS NULL, cp.price_per_hour ASC, cp.user_id ASC`
	case models.SortRatingDesc:
		return ` ORDER BY cp.rating IS NULL, cp.rating DESC, cp.review_count DESC, cp.user_id ASC`
	default:
		return ` ORDER BY cp.rating IS NULL, cp.rating DESC, cp.review_count DESC, cp.experience_years DESC, cp.user_id ASC`
	}
}
