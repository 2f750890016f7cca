package repository

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
)

type AuditLogFilter struct {
	UserID uint64
	Action string
	Limit  int
	Offset int
}

type AuditLogRepository struct {
	db DBTX
}

func NewAuditLogRepository(db DBTX) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	query := `INSERT INTO audit_logs (timestamp, action, status, user_id) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		log.Timestamp,
		log.Action,
		log.Status,
		log.UserID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = uint64(id)
	return nil
}

// List returns logs newest first.
func (r *AuditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]*entity.AuditLog, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID > 0 {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}

	query := `SELECT id, timestamp, action, status, user_id FROM audit_logs`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*entity.AuditLog, 0)
	for rows.Next() {
		log := &entity.AuditLog{}
		if err = rows.Scan(&log.ID, &log.Timestamp, &log.Action, &log.Status, &log.UserID); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
