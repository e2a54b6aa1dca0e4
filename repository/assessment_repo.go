package repository

import (
	"context"
	"database/sql"
	"fmt"

	"counselor_recommend/models"
	"counselor_recommend/utils"
)

// AssessmentRepository 测评记录查询
type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(conn *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: conn}
}

// GetLatestAssessment 查询最近一次测评，没有记录时返回 nil, nil
func (r *AssessmentRepository) GetLatestAssessment(ctx context.Context, userID int64) (*models.Assessment, error) {
	var scaleKey, level, desc sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT scale_key, result_level, result_desc
		FROM assessment_record
		WHERE user_id = ?
		ORDER BY create_time DESC, id DESC
		LIMIT 1`, userID).Scan(&scaleKey, &level, &desc)
	if err != nil {
		if utils.IsSQLNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest assessment: %w", err)
	}

	return &models.Assessment{
		ScaleKey:          scaleKey.String,
		ResultLevel:       level.String,
		ResultDescription: desc.String,
	}, nil
}

func (r *AssessmentRepository) CountAssessments(ctx context.Context, userID int64) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM assessment_record WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}
