package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"anoa.com/homeboard/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory database migrated with the full schema.
// Each test gets its own named database so parallel tests never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Person{},
		&model.Record{},
		&model.Post{},
		&model.Comment{},
		&model.PostLike{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPerson(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *model.Person {
	t.Helper()
	person := &model.Person{
		UserID: userID,
		Name:   name,
	}
	require.NoError(t, db.Create(person).Error)
	return person
}

func createTestRecord(t *testing.T, db *gorm.DB, rec *model.Record) *model.Record {
	t.Helper()
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}
	require.NoError(t, db.Create(rec).Error)
	return rec
}

func fetchRecord(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Record {
	t.Helper()
	var rec model.Record
	require.NoError(t, db.First(&rec, "id = ?", id).Error)
	return &rec
}

func strPtr(s string) *string {
	return &s
}

// fixedClock pins the engine's notion of today for deterministic math.
func fixedClock(date string) func() time.Time {
	t, _ := time.Parse(model.DateLayout, date)
	return func() time.Time { return t }
}
