package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    ListFilter
		wantWhere string
		wantOrder string
		wantArgs  []any
	}{
		{
			name:      "defaults",
			filter:    ListFilter{},
			wantWhere: "WHERE user_id = $1\n",
			wantOrder: "ORDER BY created_at DESC, id DESC",
			wantArgs:  []any{"u1", 50, 0},
		},
		{
			name:      "status ascending",
			filter:    ListFilter{Status: StatusOffer, Ascending: true, Limit: 10, Offset: 20},
			wantWhere: "WHERE user_id = $1 AND status = $2\n",
			wantOrder: "ORDER BY created_at ASC, id ASC",
			wantArgs:  []any{"u1", "offer", 10, 20},
		},
		{
			name:      "unprocessed overrides status",
			filter:    ListFilter{Status: StatusOffer, Unprocessed: true, Limit: 1000, Offset: -5},
			wantWhere: "WHERE user_id = $1 AND status = $2\n",
			wantOrder: "ORDER BY created_at DESC, id DESC",
			wantArgs:  []any{"u1", "unknown", 500, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listQuery, countQuery, args := buildListQuery("u1", tt.filter)
			assert.Contains(t, listQuery, tt.wantWhere)
			assert.Contains(t, listQuery, tt.wantOrder)
			assert.Equal(t, tt.wantArgs, args)
			assert.True(t, strings.HasPrefix(countQuery, "SELECT COUNT(*) FROM applications WHERE user_id = $1"))
			n := len(args)
			assert.Contains(t, listQuery, fmt.Sprintf("LIMIT $%d OFFSET $%d", n-1, n))
		})
	}
}

func TestApplicationPrepare(t *testing.T) {
	a := Application{
		UserID:  " u1 ",
		Title:   "  Go Engineer ",
		Company: "Acme",
		Link:    "https://www.acme.com/jobs/1?utm_source=x",
	}
	require.NoError(t, a.Prepare(true))
	assert.Equal(t, "u1", a.UserID)
	assert.Equal(t, "Go Engineer", a.Title)
	assert.Equal(t, StatusUnknown, a.Status)
	assert.Equal(t, "https://acme.com/jobs/1", a.Link)
	assert.Equal(t, []string{}, a.Tags)
}

func TestApplicationPrepare_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		app   Application
		field string
	}{
		{name: "no user", app: Application{Title: "t", Company: "c"}, field: "user_id"},
		{name: "no title", app: Application{UserID: "u", Company: "c"}, field: "title"},
		{name: "no company", app: Application{UserID: "u", Title: "t"}, field: "company"},
		{name: "bad status", app: Application{UserID: "u", Title: "t", Company: "c", Status: "ghosted"}, field: "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.app.Prepare(true)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 200))
	assert.Equal(t, 200, clampLimit(500, 20, 200))
	assert.Equal(t, 30, clampLimit(30, 20, 200))
}

func TestRetryVanished(t *testing.T) {
	t.Run("row reappears on retry", func(t *testing.T) {
		calls := 0
		app, existed, err := retryVanished(func() (Application, bool, error) {
			calls++
			if calls == 1 {
				return Application{}, false, sql.ErrNoRows
			}
			return Application{ID: 7}, false, nil
		})
		require.NoError(t, err)
		assert.False(t, existed)
		assert.Equal(t, int64(7), app.ID)
		assert.Equal(t, 2, calls)
	})

	t.Run("second miss is not found", func(t *testing.T) {
		calls := 0
		_, existed, err := retryVanished(func() (Application, bool, error) {
			calls++
			return Application{}, false, fmt.Errorf("lookup: %w", sql.ErrNoRows)
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, existed)
		assert.Equal(t, 2, calls)
	})

	t.Run("other errors pass through once", func(t *testing.T) {
		calls := 0
		_, _, err := retryVanished(func() (Application, bool, error) {
			calls++
			return Application{}, false, ErrDuplicate
		})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, 1, calls)
	})
}

// The tests below need a disposable Postgres database.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.RunMigrations("schema.sql"))
	return s
}

func TestStore_ApplicationLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	user := fmt.Sprintf("test-user-%d", time.Now().UnixNano())

	created, err := s.CreateApplication(ctx, Application{
		UserID:  user,
		Title:   "Backend Engineer",
		Company: "Acme",
		Status:  StatusApplied,
		Tags:    []string{"go", "postgres"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{"go", "postgres"}, created.Tags)
	assert.Equal(t, "Applied", created.StatusLabel)

	_, err = s.GetApplication(ctx, "someone-else", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpdateStatus(ctx, user, created.ID, StatusInterview))
	got, err := s.GetApplication(ctx, user, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, got.Status)

	got.Notes = "second round on Friday"
	updated, err := s.UpdateApplication(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "second round on Friday", updated.Notes)

	imported, existed, err := s.ImportApplication(ctx, Application{UserID: user, Title: "Go Dev", Link: "https://remoteok.com/l/1"})
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, StatusUnknown, imported.Status)

	again, existed, err := s.ImportApplication(ctx, Application{UserID: user, Title: "Go Dev", Link: "https://remoteok.com/l/1?utm_source=feed"})
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, imported.ID, again.ID)

	apps, total, err := s.ListApplications(ctx, user, ListFilter{Unprocessed: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, imported.ID, apps[0].ID)

	require.NoError(t, s.DeleteApplication(ctx, user, created.ID))
	require.NoError(t, s.DeleteApplication(ctx, user, imported.ID))
	assert.ErrorIs(t, s.DeleteApplication(ctx, user, created.ID), ErrNotFound)
}
