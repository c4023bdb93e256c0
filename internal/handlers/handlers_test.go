package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"ayu/internal/game"
	"ayu/internal/server"
)

func newTestServer(t *testing.T) (*httptest.Server, *server.Hub) {
	t.Helper()
	hub := server.NewHub(nil, clock.New())
	h := NewHandler(hub, 50*time.Millisecond)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, hub
}

func create(t *testing.T, srv *httptest.Server, body string) game.CreateResponse {
	t.Helper()
	resp, err := http.Post(srv.URL+"/create", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var out game.CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestHandleCreate(t *testing.T) {
	srv, _ := newTestServer(t)
	out := create(t, srv, `{"size":5}`)
	if out.Game == "" || out.Size != 5 || out.Keys[0] == "" || out.Keys[1] == "" {
		t.Fatalf("unexpected create response %+v", out)
	}
	if def := create(t, srv, ""); def.Size != game.DefaultSize {
		t.Fatalf("expected default size, got %d", def.Size)
	}
}

func TestHandlePoll(t *testing.T) {
	srv, _ := newTestServer(t)
	g := create(t, srv, `{"size":3}`)

	resp, err := http.Get(srv.URL + "/poll?game=" + g.Game + "&version=-1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("expected no-cache, got %q", cc)
	}
	var st game.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Version() != 0 || st.NextPlayer != game.White || st.TimeUsed == nil {
		t.Fatalf("unexpected state %+v", st)
	}

	resp2, err := http.Get(srv.URL + "/poll?game=" + g.Game + "&version=0")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 after poll delay, got %d", resp2.StatusCode)
	}
}

func TestHandlePollErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	g := create(t, srv, `{"size":3}`)
	for url, want := range map[string]int{
		"/poll?game=nope&version=0":           http.StatusNotFound,
		"/poll?game=" + g.Game + "&version=x": http.StatusBadRequest,
	} {
		resp, err := http.Get(srv.URL + url)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("%s: expected %d, got %d", url, want, resp.StatusCode)
		}
	}
}

func TestHandleUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	g := create(t, srv, `{"size":3}`)

	post := func(body string) int {
		resp, err := http.Post(srv.URL+"/update", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	move := `[[0,1],[0,0]]`
	if code := post(`{"game":"` + g.Game + `","version":1,"key":"` + g.Keys[0] + `","move":` + move + `}`); code != http.StatusConflict {
		t.Fatalf("stale version: expected 409, got %d", code)
	}
	if code := post(`{"game":"` + g.Game + `","version":0,"key":"` + g.Keys[1] + `","move":` + move + `}`); code != http.StatusForbidden {
		t.Fatalf("wrong key: expected 403, got %d", code)
	}
	if code := post(`{"game":"` + g.Game + `","version":0,"key":"` + g.Keys[0] + `","move":[[0,1],[2,1]]}`); code != http.StatusForbidden {
		t.Fatalf("illegal move: expected 403, got %d", code)
	}
	if code := post(`{`); code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", code)
	}
	if code := post(`{"game":"` + g.Game + `","version":0,"key":"` + g.Keys[0] + `","move":` + move + `}`); code != http.StatusOK {
		t.Fatalf("valid move: expected 200, got %d", code)
	}
}

func TestHandleViewAndStats(t *testing.T) {
	srv, _ := newTestServer(t)
	g := create(t, srv, `{"size":3}`)

	resp, err := http.Get(srv.URL + "/view/" + g.Game)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("view: status %d type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, err = http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["started"] != 1 || stats["active"] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
}
