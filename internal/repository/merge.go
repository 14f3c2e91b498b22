package repository

import (
	"fmt"
	"strings"

	"github.com/sakashimaa/product-catalog/internal/domain"
)

// PatchStatement merges a partial update into a single UPDATE. Every column must be
// on the mutable allow-list and at least one assignment is required.
func PatchStatement(id int64, assignments []domain.Assignment) (Statement, error) {
	if len(assignments) == 0 {
		return Statement{}, domain.ErrEmptyPatch
	}

	fragments := make([]string, 0, len(assignments))
	args := make([]any, 0, len(assignments)+1)
	seen := make(map[domain.Column]struct{}, len(assignments))

	for i, a := range assignments {
		if !a.Column.IsMutable() {
			return Statement{}, fmt.Errorf("%w: %q", domain.ErrUnknownColumn, a.Column)
		}
		if _, dup := seen[a.Column]; dup {
			return Statement{}, fmt.Errorf("%w: %q assigned twice", domain.ErrInvalidRequest, a.Column)
		}
		seen[a.Column] = struct{}{}

		fragments = append(fragments, fmt.Sprintf("%s = $%d", a.Column, i+1))
		args = append(args, bindValue(a.Value))
	}

	args = append(args, id)

	return Statement{
		SQL: fmt.Sprintf(
			"UPDATE %s SET %s WHERE %s = $%d",
			domain.TableName,
			strings.Join(fragments, ", "),
			domain.ColumnIdentity,
			len(assignments)+1,
		),
		Args: args,
	}, nil
}
