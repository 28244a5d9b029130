// Command tablesort sorts an HTML, CSV, XLSX or DOCX table, or a database
// query result, and writes the sorted table as HTML.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/JonMunkholm/tablesort/internal/core"
	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/sorter"
	"github.com/JonMunkholm/tablesort/internal/source"
)

// sortFlags are shared by the sort and query commands.
type sortFlags struct {
	column      int
	direction   string
	selector    string
	optionsFile string
	output      string
	tableOnly   bool
	logLevel    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reportError prints the technical error, followed by the user message
// and its code when the error is a known one.
func reportError(w io.Writer, err error) {
	uerr := core.NewUserError(err)
	fmt.Fprintf(w, "Error: %v\n", uerr.Technical)
	if core.IsUserFacing(uerr) {
		fmt.Fprintln(w, core.FormatUserError(uerr))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tablesort",
		Short: "Sort HTML tables by column",
		Long: `tablesort loads a table from an HTML, CSV, XLSX or DOCX file or a SQL
query, sorts it by one column and writes the result as HTML. Column types
come from data-sort-type on the header or are inferred per comparison.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSortCmd(), newQueryCmd(), newHeadersCmd())
	return root
}

func (f *sortFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.column, "column", "c", 0, "Column index to sort by")
	cmd.Flags().StringVarP(&f.direction, "dir", "d", "asc", "Sort direction: asc or desc")
	cmd.Flags().StringVarP(&f.selector, "selector", "s", "", "Table selector (#id, .class or tag); default first table")
	cmd.Flags().StringVar(&f.optionsFile, "options", "", "YAML sorter options file")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&f.tableOnly, "table-only", false, "Write only the table, not the whole document")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

// options reads the options file and points its logger at stderr.
func (f *sortFlags) options(stderr io.Writer) (sorter.Options, error) {
	var opts sorter.Options
	if f.optionsFile != "" {
		file, err := os.Open(f.optionsFile)
		if err != nil {
			return opts, err
		}
		defer file.Close()
		if opts, err = sorter.LoadOptions(file); err != nil {
			return opts, fmt.Errorf("%s: %w", f.optionsFile, err)
		}
	}
	opts.Logger = logging.New(stderr, f.logLevel, "text")
	return opts, nil
}

// sortAndWrite sorts the table in doc and writes the result.
func (f *sortFlags) sortAndWrite(doc *html.Node, stdout, stderr io.Writer) error {
	dir, ok := sorter.ParseDirection(f.direction)
	if !ok {
		return fmt.Errorf("invalid direction %q (must be asc or desc)", f.direction)
	}
	opts, err := f.options(stderr)
	if err != nil {
		return err
	}

	s, err := sorter.New(doc, f.selector, opts)
	if err != nil {
		return err
	}
	if !s.SortBy(f.column, dir) {
		return fmt.Errorf("column %d out of range (table has %d columns)", f.column, len(s.Headers()))
	}
	opts.Logger.Debug("sorted", slog.Int("column", f.column), slog.String("direction", string(dir)))

	out := doc
	if f.tableOnly {
		out = s.Table()
	}
	return f.write(out, stdout)
}

func (f *sortFlags) write(n *html.Node, stdout io.Writer) error {
	if f.output == "" {
		if err := source.Render(stdout, n); err != nil {
			return err
		}
		_, err := io.WriteString(stdout, "\n")
		return err
	}

	file, err := os.Create(f.output)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := source.Render(file, n); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func newSortCmd() *cobra.Command {
	var (
		f     sortFlags
		sheet string
	)
	cmd := &cobra.Command{
		Use:   "sort <file>",
		Short: "Sort a table from an .html, .csv, .xlsx or .docx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadFile(args[0], sheet)
			if err != nil {
				return err
			}
			return f.sortAndWrite(doc, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX worksheet or DOCX table number (default: first)")
	return cmd
}

func newHeadersCmd() *cobra.Command {
	var (
		selector string
		sheet    string
	)
	cmd := &cobra.Command{
		Use:   "headers <file>",
		Short: "List a table's sortable headers and their column types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadFile(args[0], sheet)
			if err != nil {
				return err
			}
			s, err := sorter.New(doc, selector, sorter.Options{
				ShowIndicators: sorter.Bool(false),
				Logger:         logging.New(cmd.ErrOrStderr(), "warn", "text"),
			})
			if err != nil {
				return err
			}
			return printHeaders(cmd.OutOrStdout(), s.Headers())
		},
	}
	cmd.Flags().StringVarP(&selector, "selector", "s", "", "Table selector; default first table")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX worksheet or DOCX table number (default: first)")
	return cmd
}

func printHeaders(w io.Writer, headers []sorter.Header) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tLABEL\tTYPE")
	for _, h := range headers {
		typ := h.Type.String()
		if typ == "" {
			typ = "inferred"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", h.Index, h.Label(), typ)
	}
	return tw.Flush()
}

func loadFile(path, sheet string) (*html.Node, error) {
	format, err := source.ByExtension(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return source.Load(file, format, sheet)
}
