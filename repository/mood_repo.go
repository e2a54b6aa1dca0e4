package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"counselor_recommend/models"
)

// MoodRepository 情绪日志查询
type MoodRepository struct {
	db *sql.DB
}

func NewMoodRepository(conn *sql.DB) *MoodRepository {
	return &MoodRepository{db: conn}
}

// GetRecentMoodRecords 查询 since 之后的情绪日志，最新的在前
func (r *MoodRepository) GetRecentMoodRecords(ctx context.Context, userID int64, since time.Time) ([]models.MoodRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mood_type, mood_score, log_date
		FROM mood_log
		WHERE user_id = ? AND log_date >= ?
		ORDER BY log_date DESC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query mood records: %w", err)
	}
	defer rows.Close()

	out := make([]models.MoodRecord, 0)
	for rows.Next() {
		var m models.MoodRecord
		if err := rows.Scan(&m.MoodType, &m.MoodScore, &m.LogDate); err != nil {
			return nil, fmt.Errorf("scan mood record: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood records: %w", err)
	}
	return out, nil
}

func (r *MoodRepository) CountMoodRecords(ctx context.Context, userID int64) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM mood_log WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("count mood records: %w", err)
	}
	return n, nil
}
