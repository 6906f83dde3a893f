package repository

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/greyfable/masterlist/internal/db"
	"github.com/greyfable/masterlist/internal/models"
)

// setupTestDB creates an in-memory SQLite database with all migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	for _, m := range db.Migrations {
		if _, err := sqlDB.Exec(m); err != nil {
			t.Fatalf("migration failed: %v", err)
		}
	}

	return sqlDB
}

func testUser(id, email string) *models.User {
	return &models.User{
		ID:           id,
		Email:        email,
		Username:     "tester-" + id,
		Role:         models.RoleModerator,
		PasswordHash: "bcrypt$fake",
		Active:       true,
	}
}

func testCharacter(id, number string) *models.Character {
	return &models.Character{
		ID:               id,
		MasterlistNumber: number,
		Owner:            "Alice",
		Artist:           "Bert",
		PrimaryBiome:     "tundra",
		Rarity:           "rare",
		Status:           "active",
	}
}
