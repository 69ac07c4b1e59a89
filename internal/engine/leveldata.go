package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidLevelData is matched by every *LevelDataError.
var ErrInvalidLevelData = errors.New("invalid level data")

// Level data error codes.
const (
	CodeNoBottles         = "NO_BOTTLES"
	CodeDuplicateID       = "DUPLICATE_ID"
	CodeInvalidPosition   = "INVALID_POSITION"
	CodeDuplicatePosition = "DUPLICATE_POSITION"
	CodeInvalidColor      = "INVALID_COLOR"
	CodeOverCapacity      = "OVER_CAPACITY"
	CodeInvalidLock       = "INVALID_LOCK"
)

// LevelDataError describes why a level document was rejected.
type LevelDataError struct {
	Level   int
	Code    string
	Message string
}

func (e *LevelDataError) Error() string {
	return fmt.Sprintf("level %d: [%s] %s", e.Level, e.Code, e.Message)
}

// Is lets errors.Is(err, ErrInvalidLevelData) match.
func (e *LevelDataError) Is(target error) bool {
	return target == ErrInvalidLevelData
}

// BottleRecord is one bottle as it appears in level data.
type BottleRecord struct {
	ID         int
	Row        int
	Col        int
	Blocks     []int
	LockStatus int
}

// LevelData is one level as supplied by the level-data collaborator.
type LevelData struct {
	Level   int
	Name    string
	Bottles []BottleRecord
}

// Board describes the slots available for bottles.
type Board struct {
	Rows int
	Cols int
}

// DefaultBoard is a top row and a bottom row of five slots each.
func DefaultBoard() Board {
	return Board{Rows: 2, Cols: 5}
}

// Contains reports whether p names a slot on the board.
func (b Board) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < b.Rows && p.Col >= 0 && p.Col < b.Cols
}

// Validate checks a level document against the board without building it.
func (b Board) Validate(data LevelData) error {
	_, err := NewLevel(data, b)
	return err
}

// NewLevel builds a Level from level data. The whole document is rejected on
// the first problem; nothing is truncated or clamped.
func NewLevel(data LevelData, board Board) (*Level, error) {
	fail := func(code, format string, args ...any) error {
		return &LevelDataError{Level: data.Level, Code: code, Message: fmt.Sprintf(format, args...)}
	}

	if len(data.Bottles) == 0 {
		return nil, fail(CodeNoBottles, "level has no bottles")
	}

	lvl := &Level{
		Number:  data.Level,
		Name:    data.Name,
		bottles: make(map[BottleID]*Bottle, len(data.Bottles)),
		order:   make([]BottleID, 0, len(data.Bottles)),
	}
	occupied := make(map[Position]BottleID, len(data.Bottles))

	for _, rec := range data.Bottles {
		id := BottleID(rec.ID)
		pos := Position{Row: rec.Row, Col: rec.Col}

		if _, dup := lvl.bottles[id]; dup {
			return nil, fail(CodeDuplicateID, "bottle id %d appears more than once", rec.ID)
		}
		if !board.Contains(pos) {
			return nil, fail(CodeInvalidPosition, "bottle %d: position %s has no board slot (%dx%d)",
				rec.ID, pos, board.Rows, board.Cols)
		}
		if other, taken := occupied[pos]; taken {
			return nil, fail(CodeDuplicatePosition, "bottle %d: position %s already used by bottle %d",
				rec.ID, pos, other)
		}
		lock := LockStatus(rec.LockStatus)
		if !lock.Valid() {
			return nil, fail(CodeInvalidLock, "bottle %d: lock status %d not in [0,2]", rec.ID, rec.LockStatus)
		}
		if len(rec.Blocks) > Capacity {
			return nil, fail(CodeOverCapacity, "bottle %d: %d blocks exceed capacity %d",
				rec.ID, len(rec.Blocks), Capacity)
		}

		blocks := make([]Color, len(rec.Blocks))
		for i, v := range rec.Blocks {
			c := Color(v)
			if !c.Valid() {
				return nil, fail(CodeInvalidColor, "bottle %d: color %d not in [1,%d]", rec.ID, v, MaxPatterns)
			}
			blocks[i] = c
		}

		lvl.bottles[id] = NewBottle(id, pos, lock, blocks...)
		lvl.order = append(lvl.order, id)
		occupied[pos] = id
	}

	return lvl, nil
}
