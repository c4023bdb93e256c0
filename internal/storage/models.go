package storage

import (
	"time"

	"github.com/google/uuid"
)

// Game is a persisted game. State holds the JSON encoded board snapshot.
type Game struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Size        int
	WhiteKey    string
	BlackKey    string
	State       string
	WhiteUsedMs int64
	BlackUsedMs int64
	Active      bool `gorm:"index"`
	CompletedAt *time.Time
	LastSeen    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Moves       []Move `gorm:"constraint:OnDelete:CASCADE;"`
}

// Move stores a single move in a game.
type Move struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	GameID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_game_number"`
	Number    int       `gorm:"uniqueIndex:idx_game_number"`
	Notation  string
	Color     string
	CreatedAt time.Time
}
