package window

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// mounted returns a window that behaves as if its platform surface exists.
func mounted(options ...WindowBuilderOption) *engineWindow {
	w := newEngineWindow(options...)
	w.internalWindow = struct{}{}
	return w
}

func TestWindowValid(t *testing.T) {
	w := newEngineWindow()
	if w.Valid() {
		t.Fatal("Valid: window without a platform surface reported valid")
	}
	w = mounted(WithSize(800, 600))
	if !w.Valid() {
		t.Fatal("Valid: mounted window reported invalid")
	}
	if width, height := w.Size(); width != 800 || height != 600 {
		t.Fatalf("Size\nhave %dx%d\nwant 800x600", width, height)
	}
	w.resized(0, 0)
	if w.Valid() {
		t.Fatal("Valid: zero-sized window reported valid")
	}
}

func TestWindowAttach(t *testing.T) {
	w := mounted()
	a, b := new(int), new(int)

	if err := w.Attach(a); err != nil {
		t.Fatalf("Attach(a): %v", err)
	}
	if err := w.Attach(a); err != nil {
		t.Fatalf("Attach(a) again: %v", err)
	}
	if err := w.Attach(b); !errors.Is(err, ErrOccupied) {
		t.Fatalf("Attach(b)\nhave %v\nwant %v", err, ErrOccupied)
	}

	w.Detach(b)
	if err := w.Attach(b); !errors.Is(err, ErrOccupied) {
		t.Fatalf("Attach(b) after foreign detach\nhave %v\nwant %v", err, ErrOccupied)
	}
	w.Detach(a)
	if err := w.Attach(b); err != nil {
		t.Fatalf("Attach(b) after detach: %v", err)
	}

	w.closed = true
	w.Detach(b)
	if err := w.Attach(a); err == nil {
		t.Fatal("Attach on a closed window succeeded")
	}
}

func TestWindowResizeSubscribers(t *testing.T) {
	w := mounted()
	var order []string
	var last [2]int

	unsubA := w.OnResize(func(width, height int) {
		order = append(order, "a")
		last = [2]int{width, height}
	})
	var unsubB func()
	unsubB = w.OnResize(func(int, int) {
		order = append(order, "b")
		unsubB()
	})
	w.OnResize(nil)()

	w.resized(1024, 768)
	w.resized(640, 480)

	if have, want := len(order), 3; have != want {
		t.Fatalf("notifications\nhave %v\nwant [a b a]", order)
	}
	if order[0] != "a" || order[1] != "b" || order[2] != "a" {
		t.Fatalf("notification order\nhave %v\nwant [a b a]", order)
	}
	if last != [2]int{640, 480} {
		t.Fatalf("last size\nhave %v\nwant [640 480]", last)
	}
	if width, height := w.Size(); width != 640 || height != 480 {
		t.Fatalf("Size\nhave %dx%d\nwant 640x480", width, height)
	}

	unsubA()
	unsubA()
	w.resized(10, 10)
	if len(order) != 3 {
		t.Fatalf("notified after unsubscribe: %v", order)
	}
	if len(w.subscribeOrder) != 0 {
		t.Fatalf("subscriptions left\nhave %d\nwant 0", len(w.subscribeOrder))
	}
}

func TestWindowInputSubscribers(t *testing.T) {
	w := mounted()
	var got []common.InputEvent
	unsub := w.OnInput(func(ev common.InputEvent) {
		got = append(got, ev)
	})
	resized := 0
	w.OnResize(func(int, int) { resized++ })

	w.input(common.InputEvent{Kind: common.InputPointerDown, Button: common.MouseButtonLeft, X: 3, Y: 4})
	w.input(common.InputEvent{Kind: common.InputKeyDown, Key: common.KeyW})
	unsub()
	w.input(common.InputEvent{Kind: common.InputWheel, Delta: 1})

	if len(got) != 2 {
		t.Fatalf("events delivered\nhave %d\nwant 2", len(got))
	}
	if got[0].Kind != common.InputPointerDown || got[0].X != 3 || got[0].Y != 4 {
		t.Fatalf("first event\nhave %+v\nwant pointer down at (3, 4)", got[0])
	}
	if got[1].Key != common.KeyW {
		t.Fatalf("second event key\nhave %d\nwant %d", got[1].Key, common.KeyW)
	}
	if resized != 0 {
		t.Fatalf("input reached resize subscribers %d times", resized)
	}
}
