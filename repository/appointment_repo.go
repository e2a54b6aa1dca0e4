package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"counselor_recommend/models"
)

// AppointmentRepository 预约记录查询，只读
type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(conn *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: conn}
}

func (r *AppointmentRepository) GetCompletedBookingCount(ctx context.Context, userID int64) (int, error) {
	n, err := count(ctx, r.db,
		`SELECT COUNT(*) FROM appointment WHERE user_id = ? AND status = 'COMPLETED'`, userID)
	if err != nil {
		return 0, fmt.Errorf("count completed appointments: %w", err)
	}
	return n, nil
}

// GetTopBookedCounselorIDs 按完成次数降序返回咨询师ID
func (r *AppointmentRepository) GetTopBookedCounselorIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return []int64{}, nil
	}
	ids, err := queryIDs(ctx, r.db, `
		SELECT counselor_id
		FROM appointment
		WHERE user_id = ? AND status = 'COMPLETED'
		GROUP BY counselor_id
		ORDER BY COUNT(*) DESC, MAX(start_time) DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query top booked counselors: %w", err)
	}
	return ids, nil
}

// GetActiveAppointmentsOn 查询某咨询师在 [dayStart, dayEnd) 内开始的待确认/已确认预约
func (r *AppointmentRepository) GetActiveAppointmentsOn(ctx context.Context, counselorID int64, dayStart, dayEnd time.Time) ([]models.BookedPeriod, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT start_time, end_time
		FROM appointment
		WHERE counselor_id = ?
		  AND status IN ('PENDING', 'CONFIRMED')
		  AND start_time >= ? AND start_time < ?
		ORDER BY start_time`, counselorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query active appointments: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookedPeriod, 0)
	for rows.Next() {
		var p models.BookedPeriod
		if err := rows.Scan(&p.StartTime, &p.EndTime); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return out, nil
}
