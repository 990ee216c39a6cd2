package store

import (
	"context"
	"os"
	"testing"

	"github.com/iliyamo/radical-ticket/internal/database"
)

// TestMySQLBackend needs a disposable database, e.g.
//
//	MYSQL_TEST_DSN='root:pw@tcp(127.0.0.1:3306)/ticket_test?parseTime=true' go test ./internal/store
func TestMySQLBackend(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	db, err := database.OpenDSN(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for _, stmt := range []string{`DROP TABLE IF EXISTS tickets`, `DROP TABLE IF EXISTS ticket_meta`} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("reset: %v", err)
		}
	}
	if err := database.CreateSchema(ctx, db); err != nil {
		t.Fatal(err)
	}
	testBackend(t, NewMySQL(db))
}
