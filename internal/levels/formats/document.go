// Package formats provides level-set document parsers.
package formats

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

// Document is the on-disk structure of a level set.
type Document struct {
	ID     string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Board  *DocBoard  `json:"board,omitempty" yaml:"board,omitempty"`
	Levels []DocLevel `json:"levels" yaml:"levels"`
}

// DocBoard overrides the board layout for a set.
type DocBoard struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// DocLevel is a single level entry.
type DocLevel struct {
	Level   int         `json:"level" yaml:"level"`
	Name    string      `json:"name,omitempty" yaml:"name,omitempty"`
	Bottles []DocBottle `json:"bottles" yaml:"bottles"`
}

// DocBottle is a single bottle record.
type DocBottle struct {
	ID         int         `json:"id" yaml:"id"`
	Position   DocPosition `json:"position" yaml:"position"`
	Blocks     []int       `json:"blocks" yaml:"blocks"`
	LockStatus int         `json:"lockStatus" yaml:"lockStatus"`
}

// DocPosition is a board slot.
type DocPosition struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// ParseYAML parses a YAML level-set document.
func ParseYAML(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return doc, nil
}

// ParseJSON parses a JSON level-set document.
func ParseJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return doc, nil
}

// Parse routes to the parser for a file extension.
func Parse(data []byte, ext string) (Document, error) {
	switch ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return Document{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}

// Extensions returns supported file extensions.
func Extensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

// BoardOr returns the document board, or def when none is set.
func (d Document) BoardOr(def engine.Board) engine.Board {
	if d.Board == nil {
		return def
	}
	return engine.Board{Rows: d.Board.Rows, Cols: d.Board.Cols}
}

// LevelData converts the document levels to engine level data.
// No validation happens here; the engine validates on load.
func (d Document) LevelData() []engine.LevelData {
	out := make([]engine.LevelData, 0, len(d.Levels))
	for _, dl := range d.Levels {
		ld := engine.LevelData{
			Level:   dl.Level,
			Name:    dl.Name,
			Bottles: make([]engine.BottleRecord, 0, len(dl.Bottles)),
		}
		for _, b := range dl.Bottles {
			blocks := make([]int, len(b.Blocks))
			copy(blocks, b.Blocks)
			ld.Bottles = append(ld.Bottles, engine.BottleRecord{
				ID:         b.ID,
				Row:        b.Position.Row,
				Col:        b.Position.Col,
				Blocks:     blocks,
				LockStatus: b.LockStatus,
			})
		}
		out = append(out, ld)
	}
	return out
}

// FromLevelData builds a document from engine level data.
func FromLevelData(id, name string, board engine.Board, levels []engine.LevelData) Document {
	doc := Document{
		ID:    id,
		Name:  name,
		Board: &DocBoard{Rows: board.Rows, Cols: board.Cols},
	}
	for _, ld := range levels {
		dl := DocLevel{Level: ld.Level, Name: ld.Name}
		for _, b := range ld.Bottles {
			dl.Bottles = append(dl.Bottles, DocBottle{
				ID:         b.ID,
				Position:   DocPosition{Row: b.Row, Col: b.Col},
				Blocks:     b.Blocks,
				LockStatus: b.LockStatus,
			})
		}
		doc.Levels = append(doc.Levels, dl)
	}
	return doc
}

// Encode renders the document as YAML.
func (d Document) Encode() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return out, nil
}
