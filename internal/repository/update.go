package repository

import (
	"strconv"
	"strings"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/service"
)

// UpdateBuilder assembles a single parameterized UPDATE that touches only the
// columns that were set. Table and column names must be constants from this
// package; only values are bound as parameters.
type UpdateBuilder struct {
	table     string
	keyColumn string
	columns   []string
	values    []any
	returning []string
}

// NewUpdate starts an UPDATE on table filtered by keyColumn.
func NewUpdate(table, keyColumn string) *UpdateBuilder {
	return &UpdateBuilder{table: table, keyColumn: keyColumn}
}

// Set adds column = value to the SET clause.
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

// Returning appends a RETURNING clause with the given columns.
func (b *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	b.returning = columns
	return b
}

// Len is the number of columns set so far.
func (b *UpdateBuilder) Len() int {
	return len(b.columns)
}

// Build renders the statement and its arguments. The key value is bound last,
// after every SET value. Returns service.ErrNoFieldsToUpdate when no column was set.
func (b *UpdateBuilder) Build(key any) (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, service.ErrNoFieldsToUpdate
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	for i, col := range b.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = $")
		sb.WriteString(strconv.Itoa(i + 1))
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(b.keyColumn)
	sb.WriteString(" = $")
	sb.WriteString(strconv.Itoa(len(b.columns) + 1))
	if len(b.returning) > 0 {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}

	args := make([]any, 0, len(b.values)+1)
	args = append(args, b.values...)
	args = append(args, key)
	return sb.String(), args, nil
}
