package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"ayu/internal/game"
	"ayu/internal/storage"
)

func newTestHub(t *testing.T) (*Hub, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	return NewHub(nil, mock), mock
}

func TestCreateAndGet(t *testing.T) {
	h, _ := newTestHub(t)
	g, err := h.Create(context.Background(), 5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Keys[0] == "" || g.Keys[0] == g.Keys[1] {
		t.Fatalf("expected two distinct keys, got %v", g.Keys)
	}
	got, err := h.Get(context.Background(), g.ID.String())
	if err != nil || got != g {
		t.Fatalf("get returned %v, %v", got, err)
	}
	if _, err := h.Get(context.Background(), uuid.NewString()); !errors.Is(err, ErrMissingGame) {
		t.Fatalf("expected ErrMissingGame, got %v", err)
	}
	if _, err := h.Get(context.Background(), "not-a-uuid"); !errors.Is(err, ErrMissingGame) {
		t.Fatalf("expected ErrMissingGame, got %v", err)
	}
	if _, err := h.Create(context.Background(), 1); err == nil {
		t.Fatalf("expected size 1 to be rejected")
	}
}

func TestUpdateChecks(t *testing.T) {
	h, _ := newTestHub(t)
	ctx := context.Background()
	g, _ := h.Create(ctx, 3)
	move := game.Move{Src: game.Coords{Row: 0, Col: 1}, Dst: game.Coords{Row: 0, Col: 0}}

	cases := []struct {
		upd  game.UpdateRequest
		want error
	}{
		{game.UpdateRequest{Game: g.ID.String(), Version: 1, Key: g.Keys[0], Move: move}, ErrWrongVersion},
		{game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: g.Keys[1], Move: move}, ErrForbidden},
		{game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: "", Move: move}, ErrForbidden},
		{game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: g.Keys[0], Move: game.Move{}}, ErrIllegalMove},
		{game.UpdateRequest{Game: uuid.NewString(), Version: 0, Key: g.Keys[0], Move: move}, ErrMissingGame},
	}
	for i, c := range cases {
		if err := h.Update(ctx, c.upd); !errors.Is(err, c.want) {
			t.Fatalf("case %d: expected %v, got %v", i, c.want, err)
		}
	}
	if err := h.Update(ctx, game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: g.Keys[0], Move: move}); err != nil {
		t.Fatalf("valid update failed: %v", err)
	}
	if v := g.Snapshot().Version(); v != 1 {
		t.Fatalf("expected version 1, got %d", v)
	}
}

func TestTimeUsedChargesSideToMove(t *testing.T) {
	h, mock := newTestHub(t)
	ctx := context.Background()
	g, _ := h.Create(ctx, 3)

	mock.Add(5 * time.Second)
	move := game.Move{Src: game.Coords{Row: 0, Col: 1}, Dst: game.Coords{Row: 0, Col: 0}}
	if err := h.Update(ctx, game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: g.Keys[0], Move: move}); err != nil {
		t.Fatal(err)
	}
	mock.Add(2 * time.Second)
	st := g.Snapshot()
	if st.TimeUsed == nil || st.TimeUsed[0] != 5 || st.TimeUsed[1] != 2 {
		t.Fatalf("unexpected time used %v", st.TimeUsed)
	}
}

func TestWaitWakesOnUpdate(t *testing.T) {
	h := NewHub(nil, clock.New())
	ctx := context.Background()
	g, _ := h.Create(ctx, 3)

	if st := g.Wait(ctx, -1, time.Second); st == nil || st.Version() != 0 {
		t.Fatalf("expected immediate answer for a different version")
	}

	done := make(chan *game.State, 1)
	go func() { done <- g.Wait(ctx, 0, 10*time.Second) }()
	time.Sleep(20 * time.Millisecond)
	move := game.Move{Src: game.Coords{Row: 0, Col: 1}, Dst: game.Coords{Row: 0, Col: 0}}
	if err := h.Update(ctx, game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: g.Keys[0], Move: move}); err != nil {
		t.Fatal(err)
	}
	select {
	case st := <-done:
		if st == nil || st.Version() != 1 {
			t.Fatalf("unexpected wait result %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("waiter was not woken")
	}
}

func TestWaitTimesOut(t *testing.T) {
	h := NewHub(nil, clock.New())
	g, _ := h.Create(context.Background(), 3)
	if st := g.Wait(context.Background(), 0, 10*time.Millisecond); st != nil {
		t.Fatalf("expected timeout, got %+v", st)
	}
}

func TestEvictIdleAndReload(t *testing.T) {
	db, err := storage.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	mock := clock.NewMock()
	h := NewHub(storage.NewStore(db), mock)
	ctx := context.Background()
	g, err := h.Create(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	move := game.Move{Src: game.Coords{Row: 0, Col: 1}, Dst: game.Coords{Row: 0, Col: 0}}
	if err := h.Update(ctx, game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: g.Keys[0], Move: move}); err != nil {
		t.Fatal(err)
	}

	mock.Add(23 * time.Hour)
	h.evictIdle()
	if _, ok := h.Games[g.ID]; !ok {
		t.Fatalf("game removed before 24 hours of inactivity")
	}
	mock.Add(2 * time.Hour)
	h.evictIdle()
	if _, ok := h.Games[g.ID]; ok {
		t.Fatalf("game not removed after 24 hours of inactivity")
	}

	reloaded, err := h.Get(ctx, g.ID.String())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	st := reloaded.Snapshot()
	if st.Version() != 1 || st.NextPlayer != game.Black || reloaded.Keys != g.Keys {
		t.Fatalf("reloaded game differs: %+v", st)
	}
}

func TestReloadRejectsJournalMismatch(t *testing.T) {
	db, err := storage.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewStore(db)
	mock := clock.NewMock()
	h := NewHub(store, mock)
	ctx := context.Background()
	g, err := h.Create(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	move := game.Move{Src: game.Coords{Row: 0, Col: 1}, Dst: game.Coords{Row: 0, Col: 0}}
	if err := h.Update(ctx, game.UpdateRequest{Game: g.ID.String(), Version: 0, Key: g.Keys[0], Move: move}); err != nil {
		t.Fatal(err)
	}
	// a move recorded without the matching state save
	if err := store.RecordMove(ctx, g.ID, 1, "A2-B2", "black"); err != nil {
		t.Fatal(err)
	}

	mock.Add(25 * time.Hour)
	h.evictIdle()
	if _, err := h.Get(ctx, g.ID.String()); !errors.Is(err, ErrJournalMismatch) {
		t.Fatalf("expected ErrJournalMismatch, got %v", err)
	}
}

func TestCheckJournal(t *testing.T) {
	history := []game.Move{
		{Src: game.Coords{Row: 0, Col: 1}, Dst: game.Coords{Row: 0, Col: 0}},
		{Src: game.Coords{Row: 1, Col: 0}, Dst: game.Coords{Row: 1, Col: 1}},
	}
	moves := []storage.Move{{Number: 0, Notation: "B1-A1"}, {Number: 1, Notation: "A2-B2"}}
	if err := checkJournal(moves, history); err != nil {
		t.Fatalf("matching journal rejected: %v", err)
	}
	if err := checkJournal(moves[:1], history); !errors.Is(err, ErrJournalMismatch) {
		t.Fatalf("short journal accepted: %v", err)
	}
	moves[1].Notation = "C2-B2"
	if err := checkJournal(moves, history); !errors.Is(err, ErrJournalMismatch) {
		t.Fatalf("different move accepted: %v", err)
	}
}
