package records

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type staticIDGenerator struct {
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

// steppingClock advances one second per reading so creation stamps stay ordered.
type steppingClock struct {
	current time.Time
}

func (c *steppingClock) Now() time.Time {
	now := c.current
	c.current = c.current.Add(time.Second)
	return now
}

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "records.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Symptom{}, &Medication{}, &Note{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func newTestService(t *testing.T, ids []string) (*Service, *gorm.DB) {
	t.Helper()
	db := openTestDatabase(t)
	clock := &steppingClock{current: time.Date(2024, time.January, 5, 9, 30, 0, 0, time.UTC)}
	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      clock.Now,
		IDProvider: &staticIDGenerator{ids: ids},
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service, db
}

func requireCode(t *testing.T, err error, want string) {
	t.Helper()
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %T: %v", err, err)
	}
	if serviceErr.Code() != want {
		t.Fatalf("unexpected error code: got %s want %s", serviceErr.Code(), want)
	}
}
