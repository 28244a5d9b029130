// Package core manages sortable table widgets for the server and CLI.
//
// A widget is a parsed document plus the [sorter.Sorter] attached to one
// of its tables. Widgets are created from uploaded files, preloaded
// directories, or database queries, and addressed by a uuid.
//
// # Loading
//
//	svc := core.NewService(pool, core.Config{Defaults: opts})
//	info, err := svc.LoadFile(ctx, file, core.LoadRequest{Name: "orders.csv"})
//
// Loads are bounded by a [LoadLimiter]; a load that cannot get a slot
// fails with [ErrTooManyLoads].
//
// # Sorting
//
// [Service.Sort] sorts by column index with an optional direction, and
// [Service.Dispatch] delivers a click or keydown to a header the same way
// a browser would. Both return the resulting [WidgetState].
//
// A Sorter is not safe for concurrent use. The Service holds a per-widget
// mutex around every sort, dispatch and render.
//
// # Rendering
//
// [Service.Render] writes a copy of the table, so transport decorations
// such as htmx attributes never reach the widget itself.
//
// # Errors
//
// [MapError] turns errors from this package, the sorter and the sources
// into coded [UserMessage] values. Each category has its own code range:
//
//   - TBL001-TBL005: table lookup and sorter configuration
//   - FILE001-FILE005: uploads (size, format, CSV shape)
//   - SRC001-SRC003: queries, workbooks and load capacity
//   - REQ001-REQ003: cancelled, timed out or malformed requests
//   - RATE001: rate limited
//
// [NewUserError] keeps the technical error next to its message, so callers
// can log one and show the other:
//
//	uerr := core.NewUserError(err)
//	log.Error("sort failed", "error", uerr.Technical)
//	fmt.Fprintln(w, core.FormatUserError(uerr))
package core
