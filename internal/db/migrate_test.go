package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db, DialectSQLite))
	require.NoError(t, Migrate(db, DialectSQLite))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"plans", "plan_weeks", "grading_runs"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_plans_created", "idx_plan_weeks_start", "idx_grading_runs_created"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_PlanWeeksCascade(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO plans (id, source, target_date, raw_response, plan_json, created_at)
		VALUES ('p1', 'normalize', '2025-05-30', '{}', '{}', '2025-04-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO plan_weeks (plan_id, week_number, week_start, week_end, day_count, days_json)
		VALUES ('p1', 0, '2025-04-14', '2025-04-20', 0, '[]')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM plans WHERE id = 'p1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM plan_weeks`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMigrate_RejectsUnknownSource(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO plans (id, source, target_date, raw_response, plan_json, created_at)
		VALUES ('p1', 'imported', '2025-05-30', '{}', '{}', '2025-04-01T00:00:00Z')`)
	assert.Error(t, err)
}

func TestOpenDB_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studydesk.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DialectPostgres, DialectFor("postgres://u:p@localhost/db"))
	assert.Equal(t, DialectPostgres, DialectFor("postgresql://localhost/db"))
	assert.Equal(t, DialectSQLite, DialectFor(":memory:"))
	assert.Equal(t, DialectSQLite, DialectFor("/var/lib/studydesk.db"))
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM plans WHERE source = 'a?b' AND id = ? AND created_at < ?`

	assert.Equal(t, q, DialectSQLite.Rebind(q))
	assert.Equal(t,
		`SELECT id FROM plans WHERE source = 'a?b' AND id = $1 AND created_at < $2`,
		DialectPostgres.Rebind(q))
}
