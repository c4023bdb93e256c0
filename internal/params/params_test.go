package params

import (
	"testing"

	"ayu/internal/game"
)

func TestParse(t *testing.T) {
	s := Parse("#game=abc%20d&white=k1&bogus&x=1=2&size=5")
	if v, _ := s.Get(KeyGame); v != "abc d" {
		t.Fatalf("game = %q", v)
	}
	if _, ok := s.Get("bogus"); ok {
		t.Fatalf("bogus part should be ignored")
	}
	if _, ok := s.Get("x"); ok {
		t.Fatalf("x=1=2 should be ignored")
	}
	if s.Size() != 5 {
		t.Fatalf("size = %d", s.Size())
	}
	if k, ok := s.ColorKey(game.White); !ok || k != "k1" {
		t.Fatalf("white key = %q %v", k, ok)
	}
	if _, ok := s.ColorKey(game.Black); ok {
		t.Fatalf("black key should be absent")
	}
}

func TestSetAndEncode(t *testing.T) {
	s := Parse("")
	s.Set("game", "g 1")
	s.Set("black", "k&2")
	if got := s.Encode(); got != "#black=k%262&game=g+1" {
		t.Fatalf("encode = %q", got)
	}
	round := Parse(s.Encode())
	if v, _ := round.Get("black"); v != "k&2" {
		t.Fatalf("round trip black = %q", v)
	}
	s.Delete("black")
	if got := s.Encode(); got != "#game=g+1" {
		t.Fatalf("encode after delete = %q", got)
	}
}

func TestDefaults(t *testing.T) {
	s := Parse("#size=abc")
	if s.Size() != game.DefaultSize {
		t.Fatalf("bad size should fall back to default")
	}
	if s.GetDefault("missing", "d") != "d" {
		t.Fatalf("GetDefault")
	}
}

func TestFromURL(t *testing.T) {
	s, u, err := FromURL("http://localhost:8027/game.html#game=g1&white=w")
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "localhost:8027" {
		t.Fatalf("host = %q", u.Host)
	}
	if v, _ := s.Get(KeyGame); v != "g1" {
		t.Fatalf("game = %q", v)
	}
}

func TestGameLinks(t *testing.T) {
	links := GameLinks("http://h/game.html", game.CreateResponse{Game: "g", Keys: [2]string{"w", "b"}})
	want := [4]string{
		"http://h/game.html#game=g",
		"http://h/game.html#game=g&white=w",
		"http://h/game.html#black=b&game=g",
		"http://h/game.html#black=b&game=g&white=w",
	}
	if links != want {
		t.Fatalf("links = %v", links)
	}
}
