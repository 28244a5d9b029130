package sorter

import "golang.org/x/net/html"

// EventType names an activation event delivered to a header.
type EventType string

const (
	EventClick   EventType = "click"
	EventKeyDown EventType = "keydown"
)

// Event is a pointer or keyboard event whose target is a header cell or
// one of its descendants. Key holds the key value for keydown events.
type Event struct {
	Type   EventType
	Key    string
	Target *html.Node
}

// EventResult tells the event source what happened. PreventDefault is set
// for handled key events so the host does not also scroll.
type EventResult struct {
	Handled        bool
	PreventDefault bool
	Column         int
}

// HandleEvent sorts by the target header when the event is a click, or a
// keydown of Enter or Space. The sort is the same as SortBy(column) with no
// explicit direction.
func (s *Sorter) HandleEvent(ev Event) EventResult {
	col, ok := s.headers.indexOf(ev.Target)
	if !ok {
		return EventResult{}
	}

	switch ev.Type {
	case EventClick:
		s.SortBy(col)
		return EventResult{Handled: true, Column: col}
	case EventKeyDown:
		if isActivationKey(ev.Key) {
			s.SortBy(col)
			return EventResult{Handled: true, PreventDefault: true, Column: col}
		}
	}
	return EventResult{}
}

// HeaderNode returns the header cell for column, or nil when out of range.
func (s *Sorter) HeaderNode(column int) *html.Node {
	if column < 0 || column >= len(s.headers.headers) {
		return nil
	}
	return s.headers.headers[column].Node
}

func isActivationKey(key string) bool {
	switch key {
	case "Enter", " ", "Spacebar", "Space":
		return true
	}
	return false
}
