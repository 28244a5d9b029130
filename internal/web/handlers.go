package web

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tablesort/internal/core"
	"github.com/JonMunkholm/tablesort/internal/web/templates"
)

// handleDashboard lists the loaded widgets.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	widgets := s.service.List()
	rows := make([]templates.WidgetRow, len(widgets))
	for i, wi := range widgets {
		rows[i] = templates.WidgetRow{
			ID:        wi.ID,
			Name:      wi.Name,
			Source:    string(wi.Source),
			Columns:   wi.Columns,
			Rows:      wi.Rows,
			CreatedAt: wi.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Dashboard(templates.DashboardParams{
		Widgets:     rows,
		HasDatabase: s.service.HasDatabase(),
		MaxUpload:   s.cfg.Sort.MaxUploadSize,
	}).Render(r.Context(), w)
}

// handleUploadForm loads an uploaded file and redirects to its page.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	info, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	http.Redirect(w, r, "/tables/"+info.ID, http.StatusSeeOther)
}

// handleQueryForm runs a query from the dashboard form.
func (s *Server) handleQueryForm(w http.ResponseWriter, r *http.Request) {
	sql := strings.TrimSpace(r.FormValue("sql"))
	if sql == "" {
		s.respondError(w, r, fmt.Errorf("%w: sql is required", errBadRequest), http.StatusBadRequest)
		return
	}

	info, err := s.service.LoadQuery(r.Context(), sql, core.LoadRequest{Name: r.FormValue("name")})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	http.Redirect(w, r, "/tables/"+info.ID, http.StatusSeeOther)
}

// handleTableView renders the page for one widget.
func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, err := s.service.Info(id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	table, err := s.renderTable(id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.TableView(templates.TableViewParams{
		ID:     info.ID,
		Name:   info.Name,
		Source: string(info.Source),
		Rows:   info.Rows,
		Table:  table,
	}).Render(r.Context(), w)
}

// handleSort sorts a widget from a header activation. htmx requests get
// the re-rendered table; others are redirected to the page.
//
//	GET /tables/{id}/sort?col=2&dir=desc
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	col, err := parseColumn(q.Get("col"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	dir, err := parseDirection(q.Get("dir"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	// An out-of-range column is a no-op; the unchanged table is returned.
	if _, _, err := s.service.Sort(id, col, dir); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/tables/"+id, http.StatusSeeOther)
		return
	}

	table, err := s.renderTable(id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.TablePartial(table).Render(r.Context(), w); err != nil {
		return
	}
	// Clear any alert left by an earlier failed request.
	io.WriteString(w, `<div id="errors" hx-swap-oob="true"></div>`)
}

// handleDeleteForm removes a widget and returns to the dashboard.
func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Remove(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
