package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
)

const taskColumns = `
	id,
	user_id,
	parent_id,
	task_name,
	task_detail,
	expected_time,
	penalty,
	end_time,
	is_finished,
	created_at,
	version
`

type rowScanner interface {
	Scan(dst ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		parentID sql.NullInt64
	)

	dst := []any{
		&task.ID,
		&task.UserID,
		&parentID,
		&task.TaskName,
		&task.TaskDetail,
		&task.ExpectedTime,
		&task.Penalty,
		&task.EndTime,
		&task.IsFinished,
		&task.CreatedAt,
		&task.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if parentID.Valid {
		task.ParentID = &parentID.Int64
	}

	return &task, nil
}

func (r *Repository) queryTasks(query string, args ...any) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *Repository) GetTasksByUserID(userID int64) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id`

	return r.queryTasks(query, userID)
}

// 叶子任务是没有任何子任务的任务，排序只针对尚未完成的叶子任务
func (r *Repository) GetUnfinishedLeafTasksByUserID(userID int64) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		WHERE t.user_id = $1
			AND t.is_finished = FALSE
			AND NOT EXISTS (SELECT 1 FROM tasks c WHERE c.parent_id = t.id)
		ORDER BY t.id
	`

	return r.queryTasks(query, userID)
}

func (r *Repository) GetTaskByID(id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanTask(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) CreateTask(task *domain.Task) error {
	query := `
		INSERT INTO tasks (
			user_id,
			parent_id,
			task_name,
			task_detail,
			expected_time,
			penalty,
			end_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_finished, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		task.UserID,
		task.ParentID,
		task.TaskName,
		task.TaskDetail,
		task.ExpectedTime,
		task.Penalty,
		task.EndTime,
	}
	dst := []any{&task.ID, &task.IsFinished, &task.CreatedAt, &task.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// 批量导入任务，任意一条失败则全部回滚
func (r *Repository) CreateTasks(tasks []*domain.Task) error {
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
		INSERT INTO tasks (user_id, parent_id, task_name, task_detail, expected_time, penalty, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_finished, created_at, version
	`

	for _, task := range tasks {
		params := []any{task.UserID, task.ParentID, task.TaskName, task.TaskDetail, task.ExpectedTime, task.Penalty, task.EndTime}
		dst := []any{&task.ID, &task.IsFinished, &task.CreatedAt, &task.Version}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateTask(task *domain.Task) error {
	// 不允许修改父任务，否则需要重新校验整棵任务树的惩罚值
	query := `
		UPDATE tasks
		SET
			task_name = $1,
			task_detail = $2,
			expected_time = $3,
			penalty = $4,
			end_time = $5,
			is_finished = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		task.TaskName,
		task.TaskDetail,
		task.ExpectedTime,
		task.Penalty,
		task.EndTime,
		task.IsFinished,
		task.ID,
		task.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTask(id int64) error {
	// 子任务通过外键级联删除
	query := `
		DELETE FROM tasks WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CountChildTasks(id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var count int64
	query := `SELECT COUNT(*) FROM tasks WHERE parent_id = $1`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
