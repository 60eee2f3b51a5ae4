package nav

import (
	"path/filepath"
	"testing"
)

func sameStack(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBackForwardInverse(t *testing.T) {
	h := New(nil)
	h.Navigate("/a")
	h.Navigate("/b")
	h.Navigate("/c")

	if got := h.GoBack(); got != "/b" {
		t.Fatalf("first back: %q", got)
	}
	if got := h.GoBack(); got != "/a" {
		t.Fatalf("second back: %q", got)
	}
	if got := h.GoForward(); got != "/b" {
		t.Fatalf("forward: %q", got)
	}

	if !sameStack(h.Back(), []string{"/a"}) {
		t.Fatalf("back stack: %v", h.Back())
	}
	if !sameStack(h.Forward(), []string{"/c"}) {
		t.Fatalf("forward stack: %v", h.Forward())
	}
	if h.Current() != "/b" {
		t.Fatalf("current: %q", h.Current())
	}
}

func TestQueryOnlyChangeDoesNotPush(t *testing.T) {
	h := New(nil)
	h.Navigate("/shipments")

	if pushed := h.Navigate("/shipments?tab=2"); pushed {
		t.Fatal("query-only change pushed")
	}
	if len(h.Back()) != 0 {
		t.Fatalf("back stack: %v", h.Back())
	}
	if h.Current() != "/shipments?tab=2" {
		t.Fatalf("current: %q", h.Current())
	}

	// Leaving the segment afterwards pushes the full current path.
	if pushed := h.Navigate("/rooms/rom-1"); !pushed {
		t.Fatal("segment change must push")
	}
	if !sameStack(h.Back(), []string{"/shipments?tab=2"}) {
		t.Fatalf("back stack: %v", h.Back())
	}
}

func TestNavigateClearsForward(t *testing.T) {
	h := New(nil)
	h.Navigate("/a")
	h.Navigate("/b")
	h.GoBack()
	if !h.CanGoForward() {
		t.Fatal("forward should be available")
	}

	h.Navigate("/c")
	if h.CanGoForward() {
		t.Fatalf("forward survived a push: %v", h.Forward())
	}
	if !sameStack(h.Back(), []string{"/a"}) {
		t.Fatalf("back stack: %v", h.Back())
	}
}

func TestGoBackOnEmptyStack(t *testing.T) {
	h := New(nil)
	h.Navigate("/a")
	if got := h.GoBack(); got != "" {
		t.Fatalf("back on empty: %q", got)
	}
	if h.Current() != "/a" {
		t.Fatalf("current moved: %q", h.Current())
	}
}

func TestJumpToTransfersInOrder(t *testing.T) {
	h := New(nil)
	h.Navigate("/a")
	h.Navigate("/b")
	h.Navigate("/c")
	h.Navigate("/d") // back = [/a /b /c], current /d

	if got := h.JumpTo(2); got != "/a" {
		t.Fatalf("jump target: %q", got)
	}
	if len(h.Back()) != 0 {
		t.Fatalf("back stack: %v", h.Back())
	}
	// Forward must retrace /b, /c, /d in visit order.
	if !sameStack(h.Forward(), []string{"/d", "/c", "/b"}) {
		t.Fatalf("forward stack: %v", h.Forward())
	}
	if got := h.GoForward(); got != "/b" {
		t.Fatalf("retrace: %q", got)
	}
	if got := h.GoForward(); got != "/c" {
		t.Fatalf("retrace: %q", got)
	}
}

func TestJumpToZeroEqualsGoBack(t *testing.T) {
	h := New(nil)
	h.Navigate("/a")
	h.Navigate("/b")
	if got := h.JumpTo(0); got != "/a" {
		t.Fatalf("jump 0: %q", got)
	}
	if !sameStack(h.Forward(), []string{"/b"}) {
		t.Fatalf("forward: %v", h.Forward())
	}
}

func TestJumpToOutOfRange(t *testing.T) {
	h := New(nil)
	h.Navigate("/a")
	h.Navigate("/b")
	if got := h.JumpTo(5); got != "" {
		t.Fatalf("out of range: %q", got)
	}
	if got := h.JumpTo(-1); got != "" {
		t.Fatalf("negative: %q", got)
	}
	if h.Current() != "/b" {
		t.Fatalf("current moved: %q", h.Current())
	}
}

func TestBoundedDepth(t *testing.T) {
	h := New(nil)
	for i := 0; i < maxDepth+20; i++ {
		h.Navigate("/p" + string(rune('a'+i%26)) + "/" + string(rune('a'+i/26)))
	}
	if got := len(h.Back()); got != maxDepth {
		t.Fatalf("depth: %d", got)
	}
}

func TestPersistAndRehydrate(t *testing.T) {
	dir := t.TempDir()
	storage := NewFileStorage(dir)

	h := New(storage)
	h.Navigate("/a")
	h.Navigate("/b")
	h.Navigate("/c")
	h.GoBack()

	// A fresh instance over the same file picks up where we left off.
	h2 := New(storage)
	if h2.Current() != "/b" {
		t.Fatalf("current: %q", h2.Current())
	}
	if !sameStack(h2.Back(), []string{"/a"}) {
		t.Fatalf("back: %v", h2.Back())
	}
	if !sameStack(h2.Forward(), []string{"/c"}) {
		t.Fatalf("forward: %v", h2.Forward())
	}
}

func TestRehydrateMissingFile(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "nested"))
	h := New(storage)
	if h.Current() != "" || h.CanGoBack() {
		t.Fatal("fresh history must be empty")
	}
}
