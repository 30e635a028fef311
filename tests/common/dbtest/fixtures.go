//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rentaldesk/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestPassword is the plaintext every fixture user logs in with.
const TestPassword = "password123"

var (
	hashOnce     sync.Once
	passwordHash string
)

func fixturePasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := password.HashPassword(TestPassword)
		require.NoError(t, err)
		passwordHash = h
	})
	return passwordHash
}

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		userID, email, fixturePasswordHash(t), role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}
	return userID
}

func CreateTestItem(t *testing.T, db DBLike, name string, valueCents int64) uuid.UUID {
	t.Helper()

	itemID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO items (id, name, value_cents) VALUES ($1, $2, $3)",
		itemID, name, valueCents)
	require.NoError(t, err)
	return itemID
}

func CreateTestRental(t *testing.T, db DBLike, itemID, customerID uuid.UUID, startedAt, dueAt time.Time, dailyRateCents int64, returnedAt *time.Time) uuid.UUID {
	t.Helper()

	rentalID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO rentals (id, item_id, customer_id, started_at, due_at, daily_rate_cents, returned_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		rentalID, itemID, customerID, startedAt, dueAt, dailyRateCents, returnedAt)
	require.NoError(t, err)
	return rentalID
}

func CreateTestBooking(t *testing.T, db DBLike, itemID, customerID uuid.UUID, startsAt, endsAt time.Time, status string, valueCents int64) uuid.UUID {
	t.Helper()

	bookingID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO bookings (id, item_id, customer_id, starts_at, ends_at, status, value_cents) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		bookingID, itemID, customerID, startsAt, endsAt, status, valueCents)
	require.NoError(t, err)
	return bookingID
}

func CreateTestHold(t *testing.T, db DBLike, itemID uuid.UUID, reason string) uuid.UUID {
	t.Helper()

	holdID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO maintenance_holds (id, item_id, reason) VALUES ($1, $2, $3)",
		holdID, itemID, reason)
	require.NoError(t, err)
	return holdID
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every table so each subtest starts from a clean slate.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var tbl string
			if err := rows.Scan(&tbl); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, tbl)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})

	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}
	return nil
}
