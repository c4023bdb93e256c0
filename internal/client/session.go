// Package client runs one game session: it keeps the synced snapshot, the
// history cursor, the clocks and move submission consistent on a single
// event loop goroutine.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"ayu/internal/events"
	"ayu/internal/game"
	"ayu/internal/history"
	"ayu/internal/params"
	"ayu/internal/submit"
	"ayu/internal/syncer"
	"ayu/internal/transport"

	clk "ayu/internal/clock"
)

// ErrNoGame is returned when the parameters carry no game id.
var ErrNoGame = errors.New("no game id in parameters")

// Config wires a Session to its collaborators.
type Config struct {
	Params   *params.Store
	Poller   syncer.Poller
	Updater  submit.Updater
	Board    Board
	History  HistoryView
	Clock    ClockView
	Notifier Notifier
	// Time is the time source; nil uses the wall clock.
	Time clock.Clock
	// Budget overrides syncer.DefaultBudget.
	Budget time.Duration
}

// Session is a client for one game.
type Session struct {
	// Cells and Entries carry clicks from the displays into the session.
	Cells   events.Bus[events.CellClicked]
	Entries events.Bus[events.HistoryClicked]

	cfg       Config
	gameID    string
	size      int
	loop      *syncer.Loop
	cursor    *history.Cursor
	tracker   *clk.Tracker
	submitter *submit.Submitter

	state      *game.State
	submitting bool

	snapshots chan *game.State
	clicks    chan events.CellClicked
	entries   chan events.HistoryClicked
	submitted chan error
	done      chan struct{}
}

// New validates the configuration and builds a session.
func New(cfg Config) (*Session, error) {
	if cfg.Params == nil {
		return nil, ErrNoGame
	}
	gameID, ok := cfg.Params.Get(params.KeyGame)
	if !ok || gameID == "" {
		return nil, ErrNoGame
	}
	if cfg.Time == nil {
		cfg.Time = clock.New()
	}
	s := &Session{
		cfg:       cfg,
		gameID:    gameID,
		size:      cfg.Params.Size(),
		cursor:    history.NewCursor(),
		tracker:   clk.NewTracker(cfg.Time),
		submitter: submit.New(cfg.Updater),
		snapshots: make(chan *game.State),
		clicks:    make(chan events.CellClicked),
		entries:   make(chan events.HistoryClicked),
		submitted: make(chan error, 1),
		done:      make(chan struct{}),
	}
	s.loop = syncer.NewLoop(cfg.Poller, syncer.Config{
		GameID:     gameID,
		Size:       s.size,
		Budget:     cfg.Budget,
		Clock:      cfg.Time,
		OnSnapshot: s.deliver,
	})
	s.Cells.Subscribe(func(e events.CellClicked) {
		select {
		case s.clicks <- e:
		case <-s.done:
		}
	})
	s.Entries.Subscribe(func(e events.HistoryClicked) {
		select {
		case s.entries <- e:
		case <-s.done:
		}
	})
	return s, nil
}

// GameID returns the id of the game being played.
func (s *Session) GameID() string { return s.gameID }

// Run syncs and handles events until ctx is done or polling fails.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.loop.Run(ctx)
		if err != nil && ctx.Err() == nil {
			var se *transport.StatusError
			body := err.Error()
			if errors.As(err, &se) {
				body = se.Body
			}
			s.cfg.Notifier.Alert("Poll request failed!\n" + body + "\nYou probably need to refresh the page.")
		}
		return err
	})
	g.Go(func() error { return s.run(ctx) })
	return g.Wait()
}

func (s *Session) deliver(ctx context.Context, st *game.State) error {
	select {
	case s.snapshots <- st:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) run(ctx context.Context) error {
	ticker := s.cfg.Time.Ticker(clk.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st := <-s.snapshots:
			s.apply(st)
		case e := <-s.clicks:
			s.clickCell(ctx, e.Row, e.Col)
		case e := <-s.entries:
			s.selectMove(e.Index)
		case err := <-s.submitted:
			s.submitting = false
			if err != nil {
				s.cfg.Notifier.Alert("Update request failed!\n" + alertText(err))
			}
		case <-ticker.C:
			s.tick()
		}
		s.flush()
	}
}

// apply installs a new snapshot. Everything that depends on it is updated
// before the event loop handles anything else.
func (s *Session) apply(st *game.State) {
	s.state = st
	s.cursor.Reset(st)
	s.cfg.History.Render(st.History)
	s.show()

	_, yours := s.cfg.Params.ColorKey(st.NextPlayer)
	s.cfg.Notifier.Turn(st.NextPlayer, yours)
	if s.submitter.Observe(st.Version()) {
		s.cfg.Notifier.TurnTaken()
	}

	s.tracker.Apply(st.NextPlayer, st.TimeUsed)
	s.renderClocks()
	slog.Info("snapshot", "game", s.gameID, "version", st.Version(), "next", st.NextPlayer.String())
}

func (s *Session) selectMove(index int) {
	if s.state == nil {
		return
	}
	if index == history.Live {
		s.cursor.GoToLive()
	} else {
		s.cursor.GoTo(index)
	}
	s.show()
}

// show renders the cursor's position, dropping any pending selection.
func (s *Session) show() {
	b := s.cfg.Board
	b.ClearSelected()
	b.ClearHighlighted()
	setFields(b, s.cursor.Fields())
	if m, ok := s.cursor.Highlighted(); ok {
		b.Highlight(m.Src.Row, m.Src.Col)
		b.Highlight(m.Dst.Row, m.Dst.Col)
	}
	s.cfg.History.SetSelectedIndex(s.cursor.Index())
}

func (s *Session) clickCell(ctx context.Context, row, col int) {
	st := s.state
	if st == nil || s.submitting || row < 0 || col < 0 || row >= len(st.Fields) || col >= len(st.Fields) {
		return
	}
	key, ok := s.cfg.Params.ColorKey(st.NextPlayer)
	if !ok {
		return
	}
	if !s.cursor.AtLive() {
		s.cursor.GoToLive()
		s.show()
		return
	}
	b := s.cfg.Board
	switch v := st.Fields[row][col]; {
	case v == st.NextPlayer:
		if b.IsSelected(row, col) {
			b.ClearSelected()
		} else {
			b.SetSelected(row, col)
		}
	case v == game.Empty:
		src, ok := b.Selected()
		if !ok {
			return
		}
		b.ClearSelected()
		s.submit(ctx, st.Version(), key, game.Move{Src: src, Dst: game.Coords{Row: row, Col: col}})
	}
}

func (s *Session) submit(ctx context.Context, version int, key string, m game.Move) {
	s.submitting = true
	live := s.state.Version()
	go func() {
		s.submitted <- s.submitter.Submit(ctx, s.gameID, version, live, key, m)
	}()
}

func (s *Session) tick() {
	s.tracker.Tick()
	s.renderClocks()
}

func (s *Session) renderClocks() {
	s.cfg.Clock.RenderTime(game.White, s.tracker.Elapsed(game.White))
	s.cfg.Clock.RenderTime(game.Black, s.tracker.Elapsed(game.Black))
}

func (s *Session) flush() {
	for _, d := range []any{s.cfg.Board, s.cfg.History, s.cfg.Clock, s.cfg.Notifier} {
		if f, ok := d.(Flusher); ok {
			f.Flush()
		}
	}
}

func alertText(err error) string {
	var se *transport.StatusError
	if errors.As(err, &se) {
		return se.Body
	}
	return fmt.Sprint(err)
}
