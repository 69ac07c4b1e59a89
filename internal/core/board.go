package core

import (
	"fmt"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

// Board geometry in screen cells.
const (
	SlotW   = 7                   // Horizontal space per board column
	BottleW = 5                   // Box width including walls
	BottleH = engine.Capacity + 2 // Box height including walls
	RowH    = BottleH + 3         // Marker line, box, label line, gap
)

// Layout places a board on the screen.
type Layout struct {
	Board   engine.Board
	OriginX int
	OriginY int
}

// NewLayout centers the board horizontally on a screen of width screenW,
// starting at row top.
func NewLayout(board engine.Board, screenW, top int) Layout {
	w, _ := BoardSize(board)
	return Layout{
		Board:   board,
		OriginX: max((screenW-w)/2, 0),
		OriginY: top,
	}
}

// BoardSize returns the screen area a board needs.
func BoardSize(board engine.Board) (w, h int) {
	return board.Cols * SlotW, board.Rows*RowH - 1
}

// SlotRect returns the clickable area of a board slot.
func (l Layout) SlotRect(p engine.Position) Rect {
	return NewRect(l.OriginX+p.Col*SlotW, l.OriginY+p.Row*RowH, SlotW, RowH-1)
}

// BottleRect returns the box of the bottle in a slot.
func (l Layout) BottleRect(p engine.Position) Rect {
	slot := l.SlotRect(p)
	return NewRect(slot.X+(SlotW-BottleW)/2, slot.Y+1, BottleW, BottleH)
}

// SlotAt maps a screen cell to a board slot.
func (l Layout) SlotAt(x, y int) (engine.Position, bool) {
	if x < l.OriginX || y < l.OriginY {
		return engine.Position{}, false
	}
	p := engine.Position{Row: (y - l.OriginY) / RowH, Col: (x - l.OriginX) / SlotW}
	if !l.Board.Contains(p) || !l.SlotRect(p).Contains(x, y) {
		return engine.Position{}, false
	}
	return p, true
}

// Navigate moves a cursor between occupied slots. Left and right stay in
// the row; up and down jump to the nearest row that has a bottle and pick
// the closest column. The cursor stays put when there is nowhere to go.
func Navigate(from engine.Position, a Action, occupied []engine.Position) engine.Position {
	best, found := from, false
	better := func(p engine.Position) bool {
		if !found {
			return true
		}
		switch a {
		case ActionLeft:
			return p.Col > best.Col
		case ActionRight:
			return p.Col < best.Col
		}
		// Up/Down: nearest row first, then nearest column, then leftmost.
		dr, br := Abs(p.Row-from.Row), Abs(best.Row-from.Row)
		if dr != br {
			return dr < br
		}
		dc, bc := Abs(p.Col-from.Col), Abs(best.Col-from.Col)
		if dc != bc {
			return dc < bc
		}
		return p.Col < best.Col
	}

	for _, p := range occupied {
		var ok bool
		switch a {
		case ActionLeft:
			ok = p.Row == from.Row && p.Col < from.Col
		case ActionRight:
			ok = p.Row == from.Row && p.Col > from.Col
		case ActionUp:
			ok = p.Row < from.Row
		case ActionDown:
			ok = p.Row > from.Row
		}
		if ok && better(p) {
			best, found = p, true
		}
	}
	return best
}

// BoardView is everything DrawBoard needs.
type BoardView struct {
	Snapshot   engine.Snapshot
	Cursor     engine.Position
	ShowCursor bool
	Plain      bool // Digits instead of solid blocks

	HasHint  bool
	HintFrom engine.BottleID
	HintTo   engine.BottleID

	// Pouring marks the two bottles of a pour in flight.
	Pouring    bool
	PourFrom   engine.BottleID
	PourTo     engine.BottleID
	PourAmount int
}

// DrawBoard draws every bottle of the snapshot.
func DrawBoard(s *Screen, l Layout, v BoardView) {
	for _, b := range v.Snapshot.Bottles {
		drawBottle(s, l, v, b)
	}
}

func drawBottle(s *Screen, l Layout, v BoardView, b engine.BottleView) {
	slot := l.SlotRect(b.Position)
	box := l.BottleRect(b.Position)
	selected := v.Snapshot.HasSelect && v.Snapshot.Selected == b.ID

	frame := ColorWhite
	switch {
	case b.Lock != engine.Unlocked:
		frame = ColorGray
	case selected:
		frame = ColorBrightWhite
	}
	s.DrawBox(box, frame)

	// Blocks fill from the bottom wall up.
	for i, c := range b.Blocks {
		y := box.Bottom() - 2 - i
		r := '█'
		if v.Plain {
			r = BlockGlyph(c)
		}
		s.DrawRect(NewRect(box.X+1, y, BottleW-2, 1), r, BlockColor(c))
	}

	switch b.Lock {
	case engine.FreeUnlock:
		s.SetColored(box.X+BottleW/2, box.Y+BottleH/2, '+', ColorGray)
	case engine.AdUnlock:
		s.SetColored(box.X+BottleW/2, box.Y+BottleH/2, '$', ColorGray)
	}

	// Marker line above the box.
	var marker string
	switch {
	case v.Pouring && b.ID == v.PourFrom:
		marker = fmt.Sprintf("-%d", v.PourAmount)
	case v.Pouring && b.ID == v.PourTo:
		marker = fmt.Sprintf("+%d", v.PourAmount)
	case selected:
		marker = fmt.Sprintf("^%d", v.Snapshot.LiftedRun)
	case v.HasHint && b.ID == v.HintFrom:
		marker = "->"
	case v.HasHint && b.ID == v.HintTo:
		marker = "<-"
	}
	drawCentered(s, slot, slot.Y, marker, ColorYellow)

	label := fmt.Sprintf("%d", b.ID)
	if v.ShowCursor && b.Position == v.Cursor {
		label = "[" + label + "]"
	}
	drawCentered(s, slot, box.Bottom(), label, ColorDefault)
}

func drawCentered(s *Screen, slot Rect, y int, text string, c Color) {
	if text == "" {
		return
	}
	x := slot.X + (slot.W-len([]rune(text)))/2
	s.DrawTextColored(x, y, text, c)
}

// RenderBoard draws a snapshot as plain text.
func RenderBoard(snap engine.Snapshot, board engine.Board) string {
	w, h := BoardSize(board)
	s := NewScreen(w, h)
	DrawBoard(s, NewLayout(board, w, 0), BoardView{Snapshot: snap, Plain: true})
	return s.String()
}
