package core

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/JonMunkholm/tablesort/internal/sorter"
)

// widget is one loaded table and its sorter. A Sorter is not safe for
// concurrent use, so every access goes through mu.
type widget struct {
	mu     sync.Mutex
	info   WidgetInfo
	sorter *sorter.Sorter
}

// registry holds the widgets of one Service, keyed by id.
type registry struct {
	widgets cmap.ConcurrentMap[string, *widget]
}

func newRegistry() *registry {
	return &registry{widgets: cmap.New[*widget]()}
}

// newWidgetID returns a fresh widget id.
func newWidgetID() string {
	return uuid.New().String()
}

// add stores w under w.info.ID.
func (r *registry) add(w *widget) {
	if w.info.CreatedAt.IsZero() {
		w.info.CreatedAt = time.Now()
	}
	r.widgets.Set(w.info.ID, w)
}

func (r *registry) get(id string) (*widget, error) {
	w, ok := r.widgets.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, id)
	}
	return w, nil
}

func (r *registry) remove(id string) error {
	if _, ok := r.widgets.Pop(id); !ok {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, id)
	}
	return nil
}

// all returns every widget's info, oldest first, then by name.
func (r *registry) all() []WidgetInfo {
	items := r.widgets.Items()
	result := make([]WidgetInfo, 0, len(items))
	for _, w := range items {
		result = append(result, w.info)
	}

	slices.SortFunc(result, func(a, b WidgetInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result
}

func (r *registry) count() int {
	return r.widgets.Count()
}
