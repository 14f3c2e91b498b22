package repository

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/shopspring/decimal"
)

// Statement is SQL text plus its positional arguments. Text is assembled only from
// constants and allow-listed column names; caller values live in Args.
type Statement struct {
	SQL  string
	Args []any
}

var selectColumns = strings.Join([]string{
	domain.ColumnIdentity,
	string(domain.ColumnProductName),
	string(domain.ColumnAvailability),
	string(domain.ColumnPrice),
	string(domain.ColumnShortDescription),
	string(domain.ColumnDateCreated),
}, ", ")

func SelectByIDStatement(id int64) Statement {
	return Statement{
		SQL: fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s = $1",
			selectColumns, domain.TableName, domain.ColumnIdentity,
		),
		Args: []any{id},
	}
}

func InsertStatement(in *domain.CreateProductInput) Statement {
	cols := make([]string, 0, len(domain.CreateColumns))
	placeholders := make([]string, 0, len(domain.CreateColumns))
	for i, col := range domain.CreateColumns {
		cols = append(cols, string(col))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	return Statement{
		SQL: fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			domain.TableName,
			strings.Join(cols, ", "),
			strings.Join(placeholders, ", "),
			domain.ColumnIdentity,
		),
		Args: []any{
			bindValue(deref(in.Name)),
			bindValue(deref(in.Availability)),
			bindValue(deref(in.Price)),
			bindValue(deref(in.ShortDescription)),
			bindValue(deref(in.DateCreated)),
		},
	}
}

func ReplaceStatement(id int64, in *domain.ReplaceProductInput) Statement {
	assignments := make([]string, 0, len(domain.MutableColumns))
	for i, col := range domain.MutableColumns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+1))
	}

	return Statement{
		SQL: fmt.Sprintf(
			"UPDATE %s SET %s WHERE %s = $%d",
			domain.TableName,
			strings.Join(assignments, ", "),
			domain.ColumnIdentity,
			len(domain.MutableColumns)+1,
		),
		Args: []any{
			bindValue(deref(in.Name)),
			bindValue(deref(in.Availability)),
			bindValue(deref(in.Price)),
			bindValue(deref(in.ShortDescription)),
			id,
		},
	}
}

func DeleteStatement(id int64) Statement {
	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s = $1", domain.TableName, domain.ColumnIdentity),
		Args: []any{id},
	}
}

// bindValue converts domain values into types pgx encodes natively.
// Absent values bind as NULL.
func bindValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case domain.Availability:
		return string(val)
	case decimal.Decimal:
		return pgtype.Numeric{Int: val.Coefficient(), Exp: val.Exponent(), Valid: true}
	case domain.Date:
		return pgtype.Date{Time: val.Time, Valid: true}
	default:
		return val
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}

	return *p
}
