package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"ayu/internal/game"
	"ayu/internal/server"
	"ayu/internal/templates"
)

// DefaultPollDelay is the longest a poll request is held open.
const DefaultPollDelay = 55 * time.Second

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Hub       *server.Hub
	PollDelay time.Duration
}

// NewHandler creates a new handler instance
func NewHandler(hub *server.Hub, pollDelay time.Duration) *Handler {
	if pollDelay <= 0 {
		pollDelay = DefaultPollDelay
	}
	return &Handler{Hub: hub, PollDelay: pollDelay}
}

// Router registers all routes.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(LogRequests, NoCache)
	r.Methods(http.MethodGet).Path("/poll").HandlerFunc(h.HandlePoll)
	r.Methods(http.MethodPost).Path("/update").HandlerFunc(h.HandleUpdate)
	r.Methods(http.MethodPost).Path("/create").HandlerFunc(h.HandleCreate)
	r.Methods(http.MethodGet).Path("/view/{game}").HandlerFunc(h.HandleView)
	r.Methods(http.MethodGet).Path("/stats").HandlerFunc(h.HandleStats)
	return r
}

// HandlePoll answers once the game's version differs from the requested
// one, or with 204 No Content after the poll delay.
func (h *Handler) HandlePoll(w http.ResponseWriter, r *http.Request) {
	g, err := h.Hub.Get(r.Context(), r.FormValue("game"))
	if err != nil {
		writeError(w, err)
		return
	}
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	g.Touch()
	st := g.Wait(r.Context(), version, h.PollDelay)
	if st == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// HandleUpdate processes a move
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd game.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Bad Request\n"+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Hub.Update(r.Context(), upd); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleCreate creates a new game and returns its id and keys
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req := game.CreateRequest{Size: game.DefaultSize}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad Request\n"+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Size == 0 {
		req.Size = game.DefaultSize
	}
	g, err := h.Hub.Create(r.Context(), req.Size)
	if err != nil {
		http.Error(w, "Bad Request\n"+err.Error(), http.StatusBadRequest)
		return
	}
	WriteJSON(w, http.StatusOK, game.CreateResponse{Game: g.ID.String(), Keys: g.Keys, Size: req.Size})
}

// HandleView renders the live board of a game as HTML
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	g, err := h.Hub.Get(r.Context(), mux.Vars(r)["game"])
	if err != nil {
		writeError(w, err)
		return
	}
	templates.WriteGameHTML(w, g.ID.String(), g.Snapshot())
}

// HandleStats reports aggregate game counts
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Hub.Stats(r.Context())
	if err != nil {
		slog.Error("failed to fetch stats", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, server.ErrMissingGame):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, server.ErrWrongVersion):
		http.Error(w, "Wrong Version", http.StatusConflict)
	case errors.Is(err, server.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, server.ErrIllegalMove):
		http.Error(w, "Illegal move", http.StatusForbidden)
	default:
		slog.Error("request failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
