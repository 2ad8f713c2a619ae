package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
)

func (r *Repository) InsertSequencingResult(result *domain.SequencingResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO sequencing_results (user_id, method, total_weighted_tardiness)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	args := []any{result.UserID, result.Method, result.TotalWeightedTardiness}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for position, taskID := range result.TaskIDs {
		query := `
			INSERT INTO sequencing_result_items (sequencing_result_id, position, task_id)
			VALUES ($1, $2, $3)
		`

		if _, err := tx.ExecContext(ctx, query, result.ID, position, taskID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetLatestSequencingResultByUserID(userID int64) (*domain.SequencingResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			sr.id,
			sr.method,
			sr.total_weighted_tardiness,
			sri.task_id,
			sr.created_at,
			sr.version
		FROM (
			SELECT * FROM sequencing_results
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) sr
		LEFT JOIN sequencing_result_items sri ON sr.id = sri.sequencing_result_id
		ORDER BY sri.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.SequencingResult{
		UserID:  userID,
		TaskIDs: make([]int64, 0),
	}

	for rows.Next() {
		var taskID sql.NullInt64

		dst := []any{
			&result.ID,
			&result.Method,
			&result.TotalWeightedTardiness,
			&taskID,
			&result.CreatedAt,
			&result.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !taskID.Valid {
			// 对应的任务已经被删除
			continue
		}
		result.TaskIDs = append(result.TaskIDs, taskID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if result.ID == 0 {
		return nil, sql.ErrNoRows
	}

	return result, nil
}
