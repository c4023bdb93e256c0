package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB instance and provides helper methods for persisting games.
// A nil *Store is valid and stores nothing.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// NewGame describes a game to insert.
type NewGame struct {
	ID       uuid.UUID
	Size     int
	Keys     [2]string
	State    string
	LastSeen time.Time
}

// GameStateUpdate represents a partial update to a game row.
type GameStateUpdate struct {
	State       *string
	WhiteUsed   *time.Duration
	BlackUsed   *time.Duration
	Active      *bool
	LastSeen    *time.Time
	CompletedAt *time.Time
}

// CreateGame inserts a new game.
func (s *Store) CreateGame(ctx context.Context, g NewGame) error {
	if s == nil {
		return nil
	}
	row := Game{
		ID:       g.ID,
		Size:     g.Size,
		WhiteKey: g.Keys[0],
		BlackKey: g.Keys[1],
		State:    g.State,
		Active:   true,
		LastSeen: g.LastSeen,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// SaveGameState applies partial updates to the game row.
func (s *Store) SaveGameState(ctx context.Context, id uuid.UUID, upd GameStateUpdate) error {
	if s == nil {
		return nil
	}
	updates := make(map[string]any)
	if upd.State != nil {
		updates["state"] = *upd.State
	}
	if upd.WhiteUsed != nil {
		updates["white_used_ms"] = upd.WhiteUsed.Milliseconds()
	}
	if upd.BlackUsed != nil {
		updates["black_used_ms"] = upd.BlackUsed.Milliseconds()
	}
	if upd.Active != nil {
		updates["active"] = *upd.Active
	}
	if upd.LastSeen != nil {
		updates["last_seen"] = *upd.LastSeen
	}
	if upd.CompletedAt != nil {
		updates["completed_at"] = *upd.CompletedAt
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Updates(updates).Error
}

// RecordMove inserts a move row for the given game.
func (s *Store) RecordMove(ctx context.Context, gameID uuid.UUID, number int, notation, color string) error {
	if s == nil {
		return nil
	}
	move := Move{
		ID:       uuid.New(),
		GameID:   gameID,
		Number:   number,
		Notation: notation,
		Color:    color,
	}
	return s.db.WithContext(ctx).Create(&move).Error
}

// LoadGame fetches a persisted game with its moves in order.
func (s *Store) LoadGame(ctx context.Context, id uuid.UUID) (*Game, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	var game Game
	err := s.db.WithContext(ctx).
		Preload("Moves", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		First(&game, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// CompleteGame marks a game as finished.
func (s *Store) CompleteGame(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	if s == nil {
		return nil
	}
	active := false
	return s.SaveGameState(ctx, id, GameStateUpdate{
		Active:      &active,
		CompletedAt: &completedAt,
	})
}

// Stats represents aggregate counts for games.
type Stats struct {
	Started   int64 `json:"started"`
	Completed int64 `json:"completed"`
	Active    int64 `json:"active"`
}

// FetchStats aggregates game counts.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Count(&stats.Started).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Where("active = ?", true).Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Where("completed_at IS NOT NULL").Count(&stats.Completed).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
