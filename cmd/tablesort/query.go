package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/JonMunkholm/tablesort/internal/source"
)

func newQueryCmd() *cobra.Command {
	var (
		f       sortFlags
		dbURL   string
		sql     string
		table   string
		limit   int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Sort the result of a SQL query or a PostgreSQL table",
		Example: `  tablesort query --sql "SELECT name, total FROM orders" -c 1 -d desc
  tablesort query --table reporting.orders --limit 100 --table-only
  tablesort query --db mysql://app@db/shop --sql "SELECT * FROM carts"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (sql == "") == (table == "") {
				return errors.New("exactly one of --sql or --table is required")
			}
			if dbURL == "" {
				dbURL = os.Getenv("DATABASE_URL")
			}
			if dbURL == "" {
				return errors.New("no database: set --db or DATABASE_URL")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			isPG, err := source.IsPostgres(dbURL)
			if err != nil {
				return err
			}
			if table != "" && !isPG {
				return errors.New("--table needs a PostgreSQL database; use --sql for others")
			}

			var doc *html.Node
			if isPG {
				doc, err = queryPostgres(ctx, dbURL, sql, table, limit)
			} else {
				doc, err = querySQL(ctx, dbURL, sql)
			}
			if err != nil {
				return err
			}
			return f.sortAndWrite(doc, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&dbURL, "db", "", "Database URL: postgres://, mysql:// or sqlserver:// (default: $DATABASE_URL)")
	cmd.Flags().StringVar(&sql, "sql", "", "Query to run")
	cmd.Flags().StringVar(&table, "table", "", "Table to read, optionally schema-qualified")
	cmd.Flags().IntVar(&limit, "limit", 500, "Row limit for --table")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Query timeout")
	return cmd
}

func queryPostgres(ctx context.Context, dbURL, sql, table string, limit int) (*html.Node, error) {
	connString, err := source.PostgresConnString(dbURL)
	if err != nil {
		return nil, err
	}
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	defer conn.Close(context.Background())

	if table != "" {
		return source.FromTable(ctx, conn, table, limit)
	}
	return source.FromQuery(ctx, conn, sql)
}

func querySQL(ctx context.Context, dbURL, query string) (*html.Node, error) {
	db, err := source.OpenSQL(dbURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return source.FromSQL(ctx, db, query)
}
