package core

import (
	"time"

	"github.com/JonMunkholm/tablesort/internal/sorter"
)

// SourceKind names where a widget's table came from.
type SourceKind string

const (
	SourceFile  SourceKind = "file"
	SourceQuery SourceKind = "query"
	SourceTable SourceKind = "table"
	SourceHTML  SourceKind = "html"
)

// WidgetInfo describes a loaded table widget.
type WidgetInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Source    SourceKind `json:"source"`
	Columns   int        `json:"columns"`
	Rows      int        `json:"rows"`
	CreatedAt time.Time  `json:"createdAt"`
}

// HeaderState is the emitted state of one header.
type HeaderState struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Type     string `json:"type,omitempty"`
	AriaSort string `json:"ariaSort"`
}

// WidgetState is a snapshot of a widget's sort state. Column is -1 and
// Direction empty until the first sort.
type WidgetState struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Column    int              `json:"column"`
	Direction sorter.Direction `json:"direction,omitempty"`
	Headers   []HeaderState    `json:"headers"`
}

// Event is a header activation addressed by column index rather than by
// node, for callers outside the process.
type Event struct {
	Type   sorter.EventType `json:"type"`
	Key    string           `json:"key,omitempty"`
	Column int              `json:"column"`
}

// EventOutcome is the result of dispatching an Event.
type EventOutcome struct {
	Handled        bool        `json:"handled"`
	PreventDefault bool        `json:"preventDefault"`
	State          WidgetState `json:"state"`
}
