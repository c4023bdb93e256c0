package events

import "testing"

func TestPublishOrderAndUnsubscribe(t *testing.T) {
	var b Bus[int]
	var got []string
	unA := b.Subscribe(func(v int) { got = append(got, "a") })
	b.Subscribe(func(v int) { got = append(got, "b") })

	b.Publish(1)
	unA()
	unA()
	b.Publish(2)

	want := []string{"a", "b", "b"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestSubscribeDuringPublish(t *testing.T) {
	var b Bus[string]
	calls := 0
	b.Subscribe(func(string) {
		calls++
		b.Subscribe(func(string) { calls++ })
	})
	b.Publish("x")
	if calls != 1 {
		t.Fatalf("late subscriber saw the in-progress publish")
	}
}
