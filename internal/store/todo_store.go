package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-reminders/internal/model"
)

const todoColumns = `id, title, description, status, category, due_date,
	created_at, completed_at, updated_at,
	reminder_enabled, reminder_at, reminder_relative, notification_id`

// CreateTodo inserts a new todo. Generates a UUID if ID is empty and
// writes the generated fields back into todo.
func (s *SQLiteStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	if strings.TrimSpace(todo.Title) == "" {
		return fmt.Errorf("todo title must not be empty")
	}
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	if todo.Status == "" {
		todo.Status = model.TodoStatusOpen
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.Title, todo.Description, todo.Status, todo.Category,
		utcPtr(todo.DueDate), todo.CreatedAt, utcPtr(todo.CompletedAt), todo.UpdatedAt,
		boolToInt(todo.Reminder.Enabled), utcPtr(todo.Reminder.At),
		boolToInt(todo.Reminder.Relative), todo.Reminder.NotificationID,
	)
	if err != nil {
		return fmt.Errorf("creating todo: %w", err)
	}
	return nil
}

// UpdateTodo updates an existing todo by ID, including its reminder state.
func (s *SQLiteStore) UpdateTodo(ctx context.Context, todo model.Todo) error {
	if strings.TrimSpace(todo.Title) == "" {
		return fmt.Errorf("todo title must not be empty")
	}

	now := time.Now().UTC()
	todo.UpdatedAt = now

	// Auto-manage completed_at based on status.
	if todo.Status == model.TodoStatusComplete && todo.CompletedAt == nil {
		todo.CompletedAt = &now
	} else if todo.Status != model.TodoStatusComplete {
		todo.CompletedAt = nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE todos SET
			title = ?, description = ?, status = ?, category = ?,
			due_date = ?, completed_at = ?, updated_at = ?,
			reminder_enabled = ?, reminder_at = ?, reminder_relative = ?,
			notification_id = ?
		WHERE id = ?`,
		todo.Title, todo.Description, todo.Status, todo.Category,
		utcPtr(todo.DueDate), utcPtr(todo.CompletedAt), todo.UpdatedAt,
		boolToInt(todo.Reminder.Enabled), utcPtr(todo.Reminder.At),
		boolToInt(todo.Reminder.Relative), todo.Reminder.NotificationID,
		todo.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %s: %w", todo.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", todo.ID, ErrNotFound)
	}
	return nil
}

// DeleteTodo removes a todo by ID.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTodoByID retrieves a single todo by ID.
func (s *SQLiteStore) GetTodoByID(
	ctx context.Context,
	id string,
) (*model.Todo, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT "+todoColumns+" FROM todos WHERE id = ?", id)

	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &todo, nil
}

// GetTodos retrieves todos matching the filter.
func (s *SQLiteStore) GetTodos(
	ctx context.Context,
	filter TodoFilter,
) ([]model.Todo, error) {
	query, args := buildTodoQuery(filter)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// CountByStatus returns how many todos are in each status.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var counts StatusCounts
	err := s.db.GetContext(ctx, &counts, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END), 0) AS open,
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(CASE WHEN status = 'complete' THEN 1 ELSE 0 END), 0) AS complete
		FROM todos`)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("counting todos by status: %w", err)
	}
	return counts, nil
}

// CountCreatedSince returns how many todos were created at or after since.
func (s *SQLiteStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM todos WHERE created_at >= ?", since.UTC()); err != nil {
		return 0, fmt.Errorf("counting created todos: %w", err)
	}
	return n, nil
}

// CountCompletedSince returns how many todos were completed at or after since.
func (s *SQLiteStore) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM todos WHERE completed_at IS NOT NULL AND completed_at >= ?", since.UTC()); err != nil {
		return 0, fmt.Errorf("counting completed todos: %w", err)
	}
	return n, nil
}

// TopCategorySince returns the category with the most todos completed
// at or after since, or "" if none.
func (s *SQLiteStore) TopCategorySince(ctx context.Context, since time.Time) (string, error) {
	var category string
	err := s.db.GetContext(ctx, &category, `
		SELECT category FROM todos
		WHERE category != '' AND completed_at IS NOT NULL AND completed_at >= ?
		GROUP BY category
		ORDER BY COUNT(*) DESC, category ASC
		LIMIT 1`, since.UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("finding top category: %w", err)
	}
	return category, nil
}

// buildTodoQuery constructs the SQL query and args for a TodoFilter.
func buildTodoQuery(filter TodoFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}
	if filter.Overdue {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		conditions = append(conditions,
			"due_date IS NOT NULL AND due_date < ? AND status != 'complete'")
		args = append(args, now.UTC())
	}
	if filter.Reminder != nil {
		conditions = append(conditions, "reminder_enabled = ?")
		args = append(args, boolToInt(*filter.Reminder))
	}

	query := "SELECT " + todoColumns + " FROM todos"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "created_at"
	if filter.SortBy != "" {
		allowed := map[string]bool{
			"due_date":   true,
			"created_at": true,
			"updated_at": true,
			"title":      true,
		}
		if allowed[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	return query, args
}

// scanTodo scans a todo row selected with todoColumns.
func scanTodo(row interface{ Scan(dest ...interface{}) error }) (model.Todo, error) {
	var (
		todo        model.Todo
		dueDate     *time.Time
		completedAt *time.Time
		reminderAt  *time.Time
		enabled     int
		relative    int
	)

	err := row.Scan(
		&todo.ID, &todo.Title, &todo.Description, &todo.Status, &todo.Category, &dueDate,
		&todo.CreatedAt, &completedAt, &todo.UpdatedAt,
		&enabled, &reminderAt, &relative, &todo.Reminder.NotificationID,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("scanning todo row: %w", err)
	}

	todo.DueDate = dueDate
	todo.CompletedAt = completedAt
	todo.Reminder.Enabled = enabled != 0
	todo.Reminder.At = reminderAt
	todo.Reminder.Relative = relative != 0

	return todo, nil
}

// utcPtr normalizes optional timestamps so stored values compare as text.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
