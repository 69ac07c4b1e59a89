package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

type stubSet struct {
	id     string
	levels []engine.LevelData
}

func (s stubSet) ID() string                 { return s.id }
func (s stubSet) Title() string              { return strings.ToUpper(s.id) }
func (stubSet) Board() engine.Board          { return engine.DefaultBoard() }
func (s stubSet) Levels() []engine.LevelData { return s.levels }

// numbered returns a set whose levels carry the given numbers in play order.
func numbered(id string, numbers ...int) stubSet {
	s := stubSet{id: id}
	for _, n := range numbers {
		s.levels = append(s.levels, engine.LevelData{Level: n})
	}
	return s
}

func TestAddRejectsDuplicate(t *testing.T) {
	const id = "registry-test-dup"
	f := func() (Set, error) { return numbered(id, 1), nil }

	if err := Add(id, "First", f); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if err := Add(id, "Second", f); err == nil {
		t.Fatal("second Add with the same id should fail")
	}
	if !Exists(id) {
		t.Error("Exists() = false after Add")
	}

	for _, info := range List() {
		if info.ID == id && info.Title != "First" {
			t.Errorf("title = %q, duplicate Add must not overwrite", info.Title)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("Register with a duplicate id should panic")
		}
	}()
	Register(id, "Third", f)
}

func TestOpen(t *testing.T) {
	loadErr := errors.New("bad file")
	if err := Add("registry-test-broken", "Broken", func() (Set, error) { return nil, loadErr }); err != nil {
		t.Fatal(err)
	}
	if err := Add("registry-test-ok", "OK", func() (Set, error) { return numbered("registry-test-ok", 1, 2), nil }); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
		unknown bool
	}{
		{"registered", "registry-test-ok", nil, false},
		{"factory error is wrapped", "registry-test-broken", loadErr, false},
		{"unknown id", "registry-test-missing", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Open(tt.id)
			switch {
			case tt.unknown:
				if err == nil || !strings.Contains(err.Error(), "unknown level set") {
					t.Errorf("Open(%q) error = %v, want unknown level set", tt.id, err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Open(%q) error = %v, want %v", tt.id, err, tt.wantErr)
				}
			default:
				if err != nil || set.ID() != tt.id {
					t.Errorf("Open(%q) = %v, %v", tt.id, set, err)
				}
			}
		})
	}
}

func TestListSorted(t *testing.T) {
	for _, id := range []string{"registry-test-zz", "registry-test-aa"} {
		if err := Add(id, id, func() (Set, error) { return numbered(id), nil }); err != nil {
			t.Fatal(err)
		}
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("List() not sorted at %d: %q before %q", i, list[i-1].ID, list[i].ID)
		}
	}
}

func TestFindAndNext(t *testing.T) {
	// Level numbers need not be contiguous; Next follows play order.
	set := numbered("registry-test-levels", 1, 2, 5)

	tests := []struct {
		name    string
		number  int
		found   bool
		next    int
		hasNext bool
	}{
		{"first level", 1, true, 2, true},
		{"gap in numbering", 2, true, 5, true},
		{"last level", 5, true, 0, false},
		{"missing level", 3, false, 0, false},
		{"zero", 0, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, ok := Find(set, tt.number)
			if ok != tt.found {
				t.Fatalf("Find(%d) ok = %v, want %v", tt.number, ok, tt.found)
			}
			if ok && lvl.Level != tt.number {
				t.Errorf("Find(%d) = level %d", tt.number, lvl.Level)
			}

			next, ok := Next(set, tt.number)
			if ok != tt.hasNext {
				t.Fatalf("Next(%d) ok = %v, want %v", tt.number, ok, tt.hasNext)
			}
			if ok && next.Level != tt.next {
				t.Errorf("Next(%d) = level %d, want %d", tt.number, next.Level, tt.next)
			}
		})
	}

	if _, ok := Next(numbered("registry-test-empty"), 1); ok {
		t.Error("Next on an empty set should report false")
	}
}
