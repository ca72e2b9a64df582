// Package testing provides testing utilities and helpers for the taxfolio project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/taxfolio/internal/database"
	_ "modernc.org/sqlite"
)

// NewTestDB creates a temporary SQLite database for testing. Returns the
// database instance and a cleanup function that closes the connection and
// removes the file. The cleanup function is idempotent and can be called
// multiple times safely.
//
// Each call gets its own file, so tests using it stay isolated even when
// run in parallel.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{Path: tmpPath, Name: name})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to open test database: %v", err)
	}

	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		_ = db.Close()
		_ = os.Remove(tmpPath)
	}

	return db, cleanup
}
