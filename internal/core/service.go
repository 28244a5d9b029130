package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/sorter"
	"github.com/JonMunkholm/tablesort/internal/source"
)

var (
	// ErrWidgetNotFound is returned for unknown widget ids.
	ErrWidgetNotFound = errors.New("widget not found")

	// ErrNoDatabase is returned by query loads when no database is
	// configured.
	ErrNoDatabase = errors.New("no database configured")
)

// QueryTimeout bounds a single query or table load.
var QueryTimeout = 30 * time.Second

// Config holds Service settings.
type Config struct {
	// Defaults are the sorter options for widgets loaded without their own.
	Defaults sorter.Options

	// RowLimit caps rows read by LoadTable (default: 500).
	RowLimit int

	// MaxConcurrentLoads bounds loads in flight across all sources
	// (default: DefaultMaxConcurrentLoads).
	MaxConcurrentLoads int

	// MaxLoadWait is how long a load waits for a slot before failing with
	// ErrTooManyLoads (default: DefaultMaxLoadWait).
	MaxLoadWait time.Duration
}

// LoadRequest names and configures a widget being loaded.
type LoadRequest struct {
	// Name labels the widget. For files it also selects the format by
	// extension.
	Name string

	// Selector picks the table inside an HTML document.
	Selector string

	// Sheet picks the XLSX worksheet or the zero-based DOCX table; empty
	// means the first.
	Sheet string

	// Options replaces Config.Defaults for this widget when set.
	Options *sorter.Options
}

// Service owns the loaded table widgets. It is safe for concurrent use:
// each widget serializes its own sorts and renders.
type Service struct {
	db      source.Querier
	cfg     Config
	limiter *LoadLimiter
	widgets *registry
}

// NewService creates a Service. db may be nil, in which case query and
// table loads fail with ErrNoDatabase.
func NewService(db source.Querier, cfg Config) *Service {
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = 500
	}
	return &Service{
		db:      db,
		cfg:     cfg,
		limiter: NewLoadLimiter(cfg.MaxConcurrentLoads, cfg.MaxLoadWait),
		widgets: newRegistry(),
	}
}

// ActiveLoads returns the number of loads in progress.
func (s *Service) ActiveLoads() int {
	return s.limiter.Active()
}

// WaitForLoads blocks until in-progress loads finish or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// HasDatabase reports whether query loads are available.
func (s *Service) HasDatabase() bool {
	return s.db != nil
}

// Load wraps an already parsed document as a widget.
func (s *Service) Load(ctx context.Context, doc *html.Node, kind SourceKind, req LoadRequest) (WidgetInfo, error) {
	id := newWidgetID()
	log := logging.WithFields(ctx, "widget_id", id, "name", req.Name)

	opts := s.cfg.Defaults
	if req.Options != nil {
		opts = *req.Options
	}
	opts.Logger = logging.ForWidget(id, req.Name)

	st, err := sorter.New(doc, req.Selector, opts)
	if err != nil {
		return WidgetInfo{}, fmt.Errorf("load %s: %w", req.Name, err)
	}

	w := &widget{
		info: WidgetInfo{
			ID:      id,
			Name:    req.Name,
			Source:  kind,
			Columns: len(st.Headers()),
			Rows:    st.RowCount(),
		},
		sorter: st,
	}
	s.widgets.add(w)

	log.Info("widget loaded",
		"source", string(kind),
		"columns", w.info.Columns,
		"rows", w.info.Rows,
	)
	return w.info, nil
}

// LoadFile parses r as HTML, CSV, XLSX or DOCX, chosen by the extension of
// req.Name.
func (s *Service) LoadFile(ctx context.Context, r io.Reader, req LoadRequest) (WidgetInfo, error) {
	format, err := source.ByExtension(req.Name)
	if err != nil {
		return WidgetInfo{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return WidgetInfo{}, err
	}
	doc, err := source.Load(r, format, req.Sheet)
	s.limiter.Release()
	if err != nil {
		return WidgetInfo{}, fmt.Errorf("load %s: %w", req.Name, err)
	}

	kind := SourceFile
	if format == source.FormatHTML {
		kind = SourceHTML
	}
	return s.Load(ctx, doc, kind, req)
}

// LoadQuery runs sql against the database and loads the result.
func (s *Service) LoadQuery(ctx context.Context, sql string, req LoadRequest) (WidgetInfo, error) {
	if s.db == nil {
		return WidgetInfo{}, ErrNoDatabase
	}
	if req.Name == "" {
		req.Name = "query"
	}

	doc, err := s.withDB(ctx, func(ctx context.Context) (*html.Node, error) {
		return source.FromQuery(ctx, s.db, sql)
	})
	if err != nil {
		return WidgetInfo{}, fmt.Errorf("load %s: %w", req.Name, err)
	}
	return s.Load(ctx, doc, SourceQuery, req)
}

// LoadTable loads up to Config.RowLimit rows of a database table.
func (s *Service) LoadTable(ctx context.Context, table string, req LoadRequest) (WidgetInfo, error) {
	if s.db == nil {
		return WidgetInfo{}, ErrNoDatabase
	}
	if req.Name == "" {
		req.Name = table
	}

	doc, err := s.withDB(ctx, func(ctx context.Context) (*html.Node, error) {
		return source.FromTable(ctx, s.db, table, s.cfg.RowLimit)
	})
	if err != nil {
		return WidgetInfo{}, fmt.Errorf("load table %s: %w", table, err)
	}
	return s.Load(ctx, doc, SourceTable, req)
}

func (s *Service) withDB(ctx context.Context, fn func(context.Context) (*html.Node, error)) (*html.Node, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()
	return fn(ctx)
}

// PreloadDir loads every supported file in dir. Files that fail to load
// are logged and skipped. It returns the number of widgets created.
func (s *Service) PreloadDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read preload dir: %w", err)
	}

	log := logging.FromContext(ctx)
	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := source.ByExtension(e.Name()); err != nil {
			continue
		}

		path := filepath.Join(dir, e.Name())
		if err := s.preloadFile(ctx, path); err != nil {
			log.Warn("preload failed", "file", path, "error", err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

func (s *Service) preloadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.LoadFile(ctx, f, LoadRequest{Name: filepath.Base(path)})
	return err
}

// PreloadTables loads each named database table. Failures are logged and
// skipped.
func (s *Service) PreloadTables(ctx context.Context, tables []string) int {
	log := logging.FromContext(ctx)
	loaded := 0
	for _, t := range tables {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, err := s.LoadTable(ctx, t, LoadRequest{}); err != nil {
			log.Warn("preload failed", "table", t, "error", err)
			continue
		}
		loaded++
	}
	return loaded
}

// List returns all widgets, oldest first.
func (s *Service) List() []WidgetInfo {
	return s.widgets.all()
}

// Count returns the number of loaded widgets.
func (s *Service) Count() int {
	return s.widgets.count()
}

// Info returns a widget's description.
func (s *Service) Info(id string) (WidgetInfo, error) {
	w, err := s.widgets.get(id)
	if err != nil {
		return WidgetInfo{}, err
	}
	return w.info, nil
}

// Remove drops a widget.
func (s *Service) Remove(id string) error {
	return s.widgets.remove(id)
}

// Sort sorts a widget by column. dir is "asc", "desc" or empty; anything
// else toggles like empty. The returned bool is false when column is out
// of range, in which case nothing changed.
func (s *Service) Sort(id string, column int, dir string) (WidgetState, bool, error) {
	w, err := s.widgets.get(id)
	if err != nil {
		return WidgetState{}, false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var ok bool
	if d, valid := sorter.ParseDirection(dir); valid {
		ok = w.sorter.SortBy(column, d)
	} else {
		ok = w.sorter.SortBy(column)
	}
	return w.state(), ok, nil
}

// Dispatch delivers ev to the header at ev.Column. A click, Enter or Space
// sorts by that column; other keys and unknown columns are ignored and
// report Handled false. PreventDefault is set for Enter and Space so a
// client can suppress the browser's default action.
func (s *Service) Dispatch(id string, ev Event) (EventOutcome, error) {
	w, err := s.widgets.get(id)
	if err != nil {
		return EventOutcome{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var res sorter.EventResult
	if target := w.sorter.HeaderNode(ev.Column); target != nil {
		res = w.sorter.HandleEvent(sorter.Event{Type: ev.Type, Key: ev.Key, Target: target})
	}
	return EventOutcome{
		Handled:        res.Handled,
		PreventDefault: res.PreventDefault,
		State:          w.state(),
	}, nil
}

// State returns a widget's current sort state.
func (s *Service) State(id string) (WidgetState, error) {
	w, err := s.widgets.get(id)
	if err != nil {
		return WidgetState{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state(), nil
}

// HeaderDecorator adjusts a rendered copy of a header cell.
type HeaderDecorator func(column int, th *html.Node)

// Render writes the widget's table as HTML. The table is copied first, and
// decorate, when non-nil, runs on the copy's headers, so rendering never
// changes the widget.
func (s *Service) Render(out io.Writer, id string, decorate HeaderDecorator) error {
	w, err := s.widgets.get(id)
	if err != nil {
		return err
	}

	w.mu.Lock()
	table := w.sorter.Table()
	nodes := make(map[*html.Node]*html.Node)
	copied := cloneTracked(table, nodes)
	if decorate != nil {
		for _, h := range w.sorter.Headers() {
			if th := nodes[h.Node]; th != nil {
				decorate(h.Index, th)
			}
		}
	}
	w.mu.Unlock()

	return source.Render(out, copied)
}

// state must be called with w.mu held.
func (w *widget) state() WidgetState {
	st := w.sorter.State()
	headers := w.sorter.Headers()

	out := WidgetState{
		ID:      w.info.ID,
		Name:    w.info.Name,
		Column:  st.Column,
		Headers: make([]HeaderState, len(headers)),
	}
	if st.Sorted() {
		out.Direction = st.Direction
	}
	for i, h := range headers {
		out.Headers[i] = HeaderState{
			Index:    h.Index,
			Label:    h.Label(),
			Type:     h.Type.String(),
			AriaSort: h.AriaSort(),
		}
	}
	return out
}

// cloneTracked deep-copies n, recording each original node's copy.
func cloneTracked(n *html.Node, nodes map[*html.Node]*html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	nodes[n] = c
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneTracked(child, nodes))
	}
	return c
}
