package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/baxromumarov/job-tracker/internal/urlutil"
)

var (
	ErrNotFound  = errors.New("application not found")
	ErrDuplicate = errors.New("application with this link already exists")
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Application is one tracked job posting owned by a single user.
type Application struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Link        string    `json:"link"`
	Status      Status    `json:"status"`
	StatusLabel string    `json:"status_label"`
	Notes       string    `json:"notes"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Salary      string    `json:"salary"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListFilter narrows ListApplications. Unprocessed selects status unknown and
// overrides Status.
type ListFilter struct {
	Status      Status
	Unprocessed bool
	Ascending   bool
	Limit       int
	Offset      int
}

const applicationColumns = `id, user_id, title, company, link, status, notes, description, location, salary, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var (
		a      Application
		status string
	)
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.Company,
		&a.Link,
		&status,
		&a.Notes,
		&a.Description,
		&a.Location,
		&a.Salary,
		pq.Array(&a.Tags),
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return a, err
	}
	a.Status = Status(status)
	a.StatusLabel = a.Status.Label()
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}

// Prepare trims and validates an application before it is written. Title is
// always required; company only when requireCompany is set.
func (a *Application) Prepare(requireCompany bool) error {
	a.UserID = strings.TrimSpace(a.UserID)
	a.Title = strings.TrimSpace(a.Title)
	a.Company = strings.TrimSpace(a.Company)
	a.Link = strings.TrimSpace(a.Link)

	if a.UserID == "" {
		return &ValidationError{Field: "user_id", Msg: "is required"}
	}
	if a.Title == "" {
		return &ValidationError{Field: "title", Msg: "is required"}
	}
	if requireCompany && a.Company == "" {
		return &ValidationError{Field: "company", Msg: "is required"}
	}
	status, err := ParseStatus(string(a.Status))
	if err != nil {
		return err
	}
	a.Status = status
	if a.Link != "" {
		if normalized, _, err := urlutil.Normalize(a.Link); err == nil {
			a.Link = normalized
		}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return nil
}

func buildListQuery(userID string, f ListFilter) (string, string, []any) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	switch {
	case f.Unprocessed:
		args = append(args, string(StatusUnknown))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	case f.Status != "":
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}

	cond := strings.Join(where, " AND ")
	countQuery := "SELECT COUNT(*) FROM applications WHERE " + cond

	limit := clampLimit(f.Limit, 50, 500)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	listArgs := append(append([]any{}, args...), limit, offset)
	listQuery := fmt.Sprintf(`
SELECT %s
FROM applications
WHERE %s
ORDER BY created_at %s, id %s
LIMIT $%d OFFSET $%d
`, applicationColumns, cond, order, order, len(args)+1, len(args)+2)

	return listQuery, countQuery, listArgs
}

func (s *Store) ListApplications(ctx context.Context, userID string, f ListFilter) ([]Application, int, error) {
	listQuery, countQuery, args := buildListQuery(userID, f)

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, a)
	}
	return apps, total, rows.Err()
}

func (s *Store) GetApplication(ctx context.Context, userID string, id int64) (Application, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+applicationColumns+`
FROM applications
WHERE id = $1 AND user_id = $2
`, id, userID)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

func (s *Store) CreateApplication(ctx context.Context, a Application) (Application, error) {
	if err := a.Prepare(true); err != nil {
		return a, err
	}
	row := s.db.QueryRowContext(ctx, `
INSERT INTO applications (user_id, title, company, link, status, notes, description, location, salary, tags, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING `+applicationColumns, a.UserID, a.Title, a.Company, a.Link, string(a.Status), a.Notes, a.Description, a.Location, a.Salary, pq.Array(a.Tags))
	created, err := scanApplication(row)
	if err != nil {
		return a, mapWriteError(err)
	}
	return created, nil
}

// ImportApplication stores a posting picked up from a feed or a scraped page.
// Importing the same link twice returns the existing row with existed=true.
func (s *Store) ImportApplication(ctx context.Context, a Application) (Application, bool, error) {
	if err := a.Prepare(false); err != nil {
		return a, false, err
	}
	if a.Link == "" {
		return a, false, &ValidationError{Field: "link", Msg: "is required"}
	}
	return retryVanished(func() (Application, bool, error) {
		return s.importOnce(ctx, a)
	})
}

// retryVanished reruns an import whose conflicting row was deleted between
// the insert and the lookup. A second miss is reported as ErrNotFound.
func retryVanished(attempt func() (Application, bool, error)) (Application, bool, error) {
	var (
		app     Application
		existed bool
		err     error
	)
	for i := 0; i < 2; i++ {
		app, existed, err = attempt()
		if !errors.Is(err, sql.ErrNoRows) {
			return app, existed, err
		}
	}
	return app, false, ErrNotFound
}

func (s *Store) importOnce(ctx context.Context, a Application) (Application, bool, error) {
	row := s.db.QueryRowContext(ctx, `
INSERT INTO applications (user_id, title, company, link, status, notes, description, location, salary, tags, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
ON CONFLICT (user_id, link) WHERE link <> '' DO NOTHING
RETURNING `+applicationColumns, a.UserID, a.Title, a.Company, a.Link, string(a.Status), a.Notes, a.Description, a.Location, a.Salary, pq.Array(a.Tags))
	created, err := scanApplication(row)
	if err == nil {
		return created, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return a, false, mapWriteError(err)
	}

	existing, err := scanApplication(s.db.QueryRowContext(ctx, `
SELECT `+applicationColumns+`
FROM applications
WHERE user_id = $1 AND link = $2
`, a.UserID, a.Link))
	if err != nil {
		return a, false, err
	}
	return existing, true, nil
}

func (s *Store) UpdateApplication(ctx context.Context, a Application) (Application, error) {
	if err := a.Prepare(true); err != nil {
		return a, err
	}
	row := s.db.QueryRowContext(ctx, `
UPDATE applications
SET title = $3, company = $4, link = $5, status = $6, notes = $7,
    description = $8, location = $9, salary = $10, tags = $11, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING `+applicationColumns, a.ID, a.UserID, a.Title, a.Company, a.Link, string(a.Status), a.Notes, a.Description, a.Location, a.Salary, pq.Array(a.Tags))
	updated, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	if err != nil {
		return a, mapWriteError(err)
	}
	return updated, nil
}

func (s *Store) UpdateStatus(ctx context.Context, userID string, id int64, status Status) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", status)}
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE applications
SET status = $3, updated_at = NOW()
WHERE id = $1 AND user_id = $2
`, id, userID, string(status))
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteApplication(ctx context.Context, userID string, id int64) error {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM applications
WHERE id = $1 AND user_id = $2
`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
