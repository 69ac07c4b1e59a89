// Package levels loads level-set documents from files, directories and the
// built-in collection. This package depends on engine but engine does not
// depend on levels.
package levels

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bottle-sort/internal/engine"
	"github.com/vovakirdan/bottle-sort/internal/levels/formats"
	"github.com/vovakirdan/bottle-sort/internal/registry"
)

//go:embed builtin/*.json
var builtinFS embed.FS

// ErrDuplicateLevel is returned when two levels in a set share a number.
var ErrDuplicateLevel = errors.New("levels: duplicate level number")

// LevelSet is a loaded level-set document. It implements registry.Set.
type LevelSet struct {
	id     string
	title  string
	board  engine.Board
	levels []engine.LevelData
	path   string
}

var _ registry.Set = (*LevelSet)(nil)

// NewLevelSet builds a set from a parsed document. fallbackID is used when
// the document has no id. Levels are ordered by number.
func NewLevelSet(doc formats.Document, fallbackID string, board engine.Board) *LevelSet {
	id := doc.ID
	if id == "" {
		id = fallbackID
	}
	title := doc.Name
	if title == "" {
		title = id
	}

	lvls := doc.LevelData()
	sort.SliceStable(lvls, func(i, j int) bool {
		return lvls[i].Level < lvls[j].Level
	})

	return &LevelSet{
		id:     id,
		title:  title,
		board:  doc.BoardOr(board),
		levels: lvls,
	}
}

// ID returns the set identifier.
func (s *LevelSet) ID() string { return s.id }

// Title returns the display name.
func (s *LevelSet) Title() string { return s.title }

// Board returns the board layout.
func (s *LevelSet) Board() engine.Board { return s.board }

// Levels returns the levels in play order.
func (s *LevelSet) Levels() []engine.LevelData { return s.levels }

// Path returns the file the set was loaded from, empty for built-ins.
func (s *LevelSet) Path() string { return s.path }

// Validate checks every level against the set's board and reports all
// problems at once.
func (s *LevelSet) Validate() error {
	var errs []error
	seen := make(map[int]bool, len(s.levels))
	for _, lvl := range s.levels {
		if seen[lvl.Level] {
			errs = append(errs, fmt.Errorf("%w: %d", ErrDuplicateLevel, lvl.Level))
		}
		seen[lvl.Level] = true
		if err := s.board.Validate(lvl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Loader reads level-set documents.
type Loader struct {
	// Board is used for documents that do not declare one.
	Board  engine.Board
	logger *log.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(board engine.Board, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{Board: board, logger: logger}
}

// LoadFile loads and validates a single level-set file.
func (l *Loader) LoadFile(path string) (*LevelSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: reading file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	doc, err := formats.Parse(data, ext)
	if err != nil {
		return nil, fmt.Errorf("levels: parsing file %s: %w", path, err)
	}

	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	set := NewLevelSet(doc, fallback, l.Board)
	set.path = path

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("levels: %s: %w", path, err)
	}

	l.logger.Debug("loaded level set", "id", set.ID(), "levels", len(set.Levels()), "path", path)
	return set, nil
}

// FileError is a level file that failed to load.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Scan recursively loads every supported file under root and reports the
// files that failed separately. Sets are sorted by ID.
func (l *Loader) Scan(root string) ([]*LevelSet, []FileError, error) {
	var (
		sets   []*LevelSet
		failed []FileError
	)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		set, err := l.LoadFile(path)
		if err != nil {
			failed = append(failed, FileError{Path: path, Err: err})
			return nil
		}
		sets = append(sets, set)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("levels: walking directory %s: %w", root, err)
	}

	sort.Slice(sets, func(i, j int) bool {
		return sets[i].ID() < sets[j].ID()
	})
	return sets, failed, nil
}

// LoadDir recursively loads every supported file under root.
// Invalid files are skipped with a warning. Sets are sorted by ID.
func (l *Loader) LoadDir(root string) ([]*LevelSet, error) {
	sets, failed, err := l.Scan(root)
	if err != nil {
		return nil, err
	}
	for _, f := range failed {
		l.logger.Warn("skipping level file", "path", f.Path, "error", f.Err)
	}
	return sets, nil
}

// LoadPath loads a file or a directory.
func (l *Loader) LoadPath(path string) ([]*LevelSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	if info.IsDir() {
		return l.LoadDir(path)
	}
	set, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*LevelSet{set}, nil
}

// RegisterPath loads sets from path and adds them to the registry.
// Returns the IDs that were added.
func (l *Loader) RegisterPath(path string) ([]string, error) {
	sets, err := l.LoadPath(path)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sets))
	for _, set := range sets {
		set := set
		if err := registry.Add(set.ID(), set.Title(), func() (registry.Set, error) {
			return set, nil
		}); err != nil {
			l.logger.Warn("level set not registered", "id", set.ID(), "error", err)
			continue
		}
		ids = append(ids, set.ID())
	}
	return ids, nil
}

// Builtin loads an embedded level set by file name (without extension).
func Builtin(name string) (*LevelSet, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("levels: no built-in set %q: %w", name, err)
	}
	doc, err := formats.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("levels: built-in set %q: %w", name, err)
	}
	set := NewLevelSet(doc, name, engine.DefaultBoard())
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("levels: built-in set %q: %w", name, err)
	}
	return set, nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.Extensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

func init() {
	registry.Register("classic", "Classic", func() (registry.Set, error) {
		return Builtin("classic")
	})
}
