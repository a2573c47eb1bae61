package task

import (
	"context"
	"strings"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/shared/apperr"

	"github.com/google/uuid"
)

var ErrNotFound = apperr.NotFound("task not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Add(ctx context.Context, userID, text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, apperr.Invalid("task text required")
	}
	t := Task{ID: uuid.NewString(), UserID: userID, Text: text}
	row := s.db.QueryRow(ctx, `
		INSERT INTO tasks (id, user_id, text)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, t.ID, t.UserID, t.Text)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Task{}, apperr.Wrap("insert task", err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Task, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, text, completed, created_at
		FROM tasks WHERE user_id=$1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, apperr.Wrap("list tasks", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Service) Toggle(ctx context.Context, userID, id string) (Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Task{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `
		UPDATE tasks SET completed = NOT completed
		WHERE id=$1 AND user_id=$2
		RETURNING id, user_id, text, completed, created_at
	`, id, userID)
	var t Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
		if db.IsNoRows(err) {
			return Task{}, ErrNotFound
		}
		return Task{}, apperr.Wrap("toggle task", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return apperr.Wrap("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
