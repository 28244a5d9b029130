package source

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/net/html"

	"github.com/JonMunkholm/tablesort/internal/sorter"
)

// Querier is the part of *pgxpool.Pool, *pgx.Conn and pgx.Tx used here.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FromQuery runs sql and builds a table from the result. Header types are
// derived from the result column OIDs, so numeric and date columns sort by
// value regardless of how their text is formatted.
func FromQuery(ctx context.Context, db Querier, sql string, args ...any) (*html.Node, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]Column, len(fields))
	for i, fd := range fields {
		columns[i] = Column{Name: fd.Name, Type: typeForOID(fd.DataTypeOID)}
	}

	var body [][]Cell
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(body)+1, err)
		}
		row := make([]Cell, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		body = append(body, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return BuildTable(columns, body), nil
}

// FromTable loads up to limit rows of a table. name may be schema-qualified
// ("reporting.orders"); each part is quoted as an identifier.
func FromTable(ctx context.Context, db Querier, name string, limit int) (*html.Node, error) {
	ident := pgx.Identifier(strings.Split(name, "."))
	sql := fmt.Sprintf("SELECT * FROM %s LIMIT %d", ident.Sanitize(), limit)
	return FromQuery(ctx, db, sql)
}

// typeForOID maps a Postgres type to the column type the sorter should
// declare for it. Text-like and unknown types are left to inference.
func typeForOID(oid uint32) sorter.ColumnType {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID,
		pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return sorter.TypeNumber
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return sorter.TypeDate
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID:
		return sorter.TypeString
	}
	return sorter.TypeInferred
}

// formatValue renders a decoded column value. When the display text is
// rounded or localized, the exact value goes to SortValue.
func formatValue(v any) Cell {
	switch val := v.(type) {
	case nil:
		return Cell{}

	case pgtype.Numeric:
		if !val.Valid || val.NaN {
			return Cell{}
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return Cell{}
		}
		exact := numericString(val)
		if f.Float64 == float64(int64(f.Float64)) {
			return Cell{Text: fmt.Sprintf("%.0f", f.Float64), SortValue: exact}
		}
		return Cell{Text: fmt.Sprintf("%.2f", f.Float64), SortValue: exact}

	case time.Time:
		if val.IsZero() {
			return Cell{}
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return Cell{Text: val.Format("2006-01-02")}
		}
		return Cell{Text: val.Format("2006-01-02 15:04"), SortValue: val.UTC().Format(time.RFC3339Nano)}

	case float32:
		return Cell{Text: strconv.FormatFloat(float64(val), 'f', -1, 32)}
	case float64:
		return Cell{Text: strconv.FormatFloat(val, 'f', -1, 64)}

	case bool:
		if val {
			return Cell{Text: "Yes"}
		}
		return Cell{Text: "No"}

	case [16]byte:
		return Cell{Text: uuid.UUID(val).String()}

	case string:
		return Cell{Text: val}

	default:
		return Cell{Text: fmt.Sprintf("%v", v)}
	}
}

// numericString renders a Numeric at full precision as decimal text.
func numericString(n pgtype.Numeric) string {
	if n.Int == nil {
		return "0"
	}
	r := new(big.Rat).SetInt(n.Int)
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(n.Exp))), nil)
	if n.Exp < 0 {
		r.Quo(r, new(big.Rat).SetInt(exp))
		return strings.TrimRight(strings.TrimRight(r.FloatString(int(-n.Exp)), "0"), ".")
	}
	r.Mul(r, new(big.Rat).SetInt(exp))
	return r.FloatString(0)
}

func abs(i int32) int32 {
	if i < 0 {
		return -i
	}
	return i
}
