package persistence

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/pkg/filter"
)

// nodeFieldMap maps logical predicate field paths to tree_nodes columns under
// the given alias. An empty alias yields bare column names for UPDATE and
// DELETE statements.
func nodeFieldMap(alias string) map[string]string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	m := map[string]string{
		"id":                     prefix + "id",
		"parentId":               prefix + "parent_id",
		accesscontrol.FieldOwner: prefix + "owner",
	}
	for _, p := range accesscontrol.Permissions() {
		key := p.FieldKey()
		m[accesscontrol.GuestField(p)] = prefix + key + "_guest"
		m[accesscontrol.UsersField(p)] = prefix + key + "_users"
		m[accesscontrol.RolesField(p)] = prefix + key + "_roles"
		m[accesscontrol.GroupsField(p)] = prefix + key + "_groups"
	}
	return m
}

// sqlPredicate renders a filter expression into a SQL condition. Placeholders
// are numbered from argOffset so the caller can prepend its own arguments.
type sqlPredicate struct {
	fields map[string]string
	offset int
	args   []any
}

func newSQLPredicate(fields map[string]string, argOffset int) *sqlPredicate {
	return &sqlPredicate{fields: fields, offset: argOffset}
}

func (b *sqlPredicate) Args() []any { return b.args }

func (b *sqlPredicate) column(field string) (string, error) {
	col, ok := b.fields[field]
	if !ok {
		return "", errors.Errorf("no column mapped for field %q", field)
	}
	return col, nil
}

func (b *sqlPredicate) placeholder(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", b.offset+len(b.args)-1)
}

func (b *sqlPredicate) Render(e filter.Expr) (string, error) {
	switch expr := e.(type) {
	case filter.EqExpr:
		col, err := b.column(expr.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", col, b.placeholder(expr.Value)), nil
	case filter.ContainsExpr:
		col, err := b.column(expr.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = ANY(%s)", b.placeholder(expr.Value), col), nil
	case filter.IsNullExpr:
		col, err := b.column(expr.Field)
		if err != nil {
			return "", err
		}
		return col + " IS NULL", nil
	case filter.AndExpr:
		return b.renderJunction(expr.Exprs, " AND ")
	case filter.OrExpr:
		return b.renderJunction(expr.Exprs, " OR ")
	case filter.NothingExpr:
		return "FALSE", nil
	}
	return "", errors.Errorf("unsupported filter expression %T", e)
}

func (b *sqlPredicate) renderJunction(exprs []filter.Expr, op string) (string, error) {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		cond, err := b.Render(e)
		if err != nil {
			return "", err
		}
		parts = append(parts, cond)
	}
	return "(" + strings.Join(parts, op) + ")", nil
}
