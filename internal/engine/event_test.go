package engine

import "testing"

func TestEventInvokeAndRemove(t *testing.T) {
	var e Event
	calls := 0
	id := e.AddListener(func() { calls++ })
	e.AddListener(func() { calls += 10 })

	e.Invoke()
	if calls != 11 {
		t.Errorf("Expected 11, got %d", calls)
	}

	e.RemoveListener(id)
	e.Invoke()
	if calls != 21 {
		t.Errorf("Expected 21 after removing the first listener, got %d", calls)
	}
	if e.GetListenerCount() != 1 {
		t.Errorf("Expected 1 listener, got %d", e.GetListenerCount())
	}

	if e.AddListener(nil) != 0 {
		t.Error("nil listeners should be ignored")
	}
}

func TestEventWithArg(t *testing.T) {
	var e EventWithArg[string]
	var got []string
	e.AddListener(func(s string) { got = append(got, s) })

	e.Invoke("a")
	e.Invoke("b")

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}

	e.RemoveAllListeners()
	e.Invoke("c")
	if len(got) != 2 {
		t.Error("RemoveAllListeners should silence the event")
	}
}
