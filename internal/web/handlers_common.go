package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/JonMunkholm/tablesort/internal/core"
	"github.com/JonMunkholm/tablesort/internal/sorter"
	"github.com/JonMunkholm/tablesort/internal/web/templates"
)

// errBadRequest marks malformed parameters.
var errBadRequest = errors.New("invalid request")

// headerTrigger fires a sort on click and on Enter or Space, the same
// activations the sorter accepts. static/tablesort.js cancels the keys'
// default scrolling.
const headerTrigger = "click, keydown[key=='Enter'||key==' '||key=='Spacebar']"

// parseColumn reads a non-negative column index from a query or form
// value.
func parseColumn(raw string) (int, error) {
	col, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || col < 0 {
		return 0, fmt.Errorf("%w: column %q must be a non-negative integer", errBadRequest, raw)
	}
	return col, nil
}

// parseDirection accepts asc, desc or nothing. Nothing means toggle.
func parseDirection(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	d, ok := sorter.ParseDirection(raw)
	if !ok {
		return "", fmt.Errorf("%w: direction %q must be asc or desc", errBadRequest, raw)
	}
	return string(d), nil
}

// htmxHeaders returns a decorator that wires each rendered header to the
// sort route of widget id.
func htmxHeaders(id string) core.HeaderDecorator {
	return func(column int, th *html.Node) {
		th.Attr = append(th.Attr,
			html.Attribute{Key: "hx-get", Val: fmt.Sprintf("/tables/%s/sort?col=%d", id, column)},
			html.Attribute{Key: "hx-trigger", Val: headerTrigger},
			html.Attribute{Key: "hx-target", Val: "#" + templates.TableContainerID},
			html.Attribute{Key: "hx-swap", Val: "outerHTML"},
		)
	}
}

// renderTable renders widget id with htmx wiring on its headers.
func (s *Server) renderTable(id string) (string, error) {
	var b strings.Builder
	if err := s.service.Render(&b, id, htmxHeaders(id)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// readUpload parses a multipart upload and loads it as a widget. Fields:
// file (required), selector, sheet, options (YAML sorter options).
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.WidgetInfo, error) {
	maxSize := s.cfg.Sort.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return core.WidgetInfo{}, fmt.Errorf("%w: parse upload: %w", errBadRequest, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return core.WidgetInfo{}, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	req := core.LoadRequest{
		Name:     header.Filename,
		Selector: r.FormValue("selector"),
		Sheet:    r.FormValue("sheet"),
	}
	if raw := strings.TrimSpace(r.FormValue("options")); raw != "" {
		opts, err := sorter.LoadOptions(strings.NewReader(raw))
		if err != nil {
			return core.WidgetInfo{}, err
		}
		req.Options = &opts
	}

	return s.service.LoadFile(r.Context(), file, req)
}
