package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/lojf/campreg/internal/db"
)

// TestOpen_WALMode verifies that the DSN parameters enable WAL journal mode.
func TestOpen_WALMode(t *testing.T) {
	gdb, err := db.Open(filepath.Join(t.TempDir(), "wal_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}
}

// TestInit_CreatesTablesAndIndexes verifies that Init migrates every registry
// table and adds the lookup indexes GORM does not derive from struct tags.
func TestInit_CreatesTablesAndIndexes(t *testing.T) {
	if err := db.Init(filepath.Join(t.TempDir(), "init.db"), nil); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sqlDB, err := db.Conn().DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, table := range []string{"camps", "users", "families", "individuals", "delegates", "aid_deliveries"} {
		if !db.Conn().Migrator().HasTable(table) {
			t.Errorf("table %q missing", table)
		}
	}

	found := indexNames(t, sqlDB, "individuals")
	for _, want := range []string{"idx_individual_name", "idx_individual_nid", "idx_individuals_family_id"} {
		if !found[want] {
			t.Errorf("index %q missing from individuals table; found: %v", want, found)
		}
	}
	if !indexNames(t, sqlDB, "families")["idx_family_camp_number"] {
		t.Error("composite index idx_family_camp_number missing from families")
	}
}

func indexNames(t *testing.T, sqlDB *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	if err != nil {
		t.Fatalf("PRAGMA index_list: %v", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[name] = true
	}
	return out
}
