// Package filter provides a small storage-agnostic predicate AST. Predicates
// are built over logical field paths and translated to the store's native
// query language only at the repository boundary, so permission logic stays
// unit-testable without a live database.
package filter

// Expr is a boolean expression over logical field paths.
type Expr interface {
	isExpr()
}

// EqExpr matches documents whose field equals the value.
type EqExpr struct {
	Field string
	Value any
}

// ContainsExpr matches documents whose array-valued field contains the value.
type ContainsExpr struct {
	Field string
	Value any
}

// IsNullExpr matches documents whose field is absent or null.
type IsNullExpr struct {
	Field string
}

type AndExpr struct {
	Exprs []Expr
}

type OrExpr struct {
	Exprs []Expr
}

// NothingExpr matches no document. It is the result of a permission check
// with no usable identity terms: deny by default.
type NothingExpr struct{}

func (EqExpr) isExpr()       {}
func (ContainsExpr) isExpr() {}
func (IsNullExpr) isExpr()   {}
func (AndExpr) isExpr()      {}
func (OrExpr) isExpr()       {}
func (NothingExpr) isExpr()  {}

func Eq(field string, value any) Expr {
	return EqExpr{Field: field, Value: value}
}

func Contains(field string, value any) Expr {
	return ContainsExpr{Field: field, Value: value}
}

func IsNull(field string) Expr {
	return IsNullExpr{Field: field}
}

func Nothing() Expr {
	return NothingExpr{}
}

// And conjoins expressions. Nil operands are dropped; a Nothing operand makes
// the whole conjunction match nothing.
func And(exprs ...Expr) Expr {
	flat := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if nested, ok := e.(AndExpr); ok {
			flat = append(flat, nested.Exprs...)
			continue
		}
		flat = append(flat, e)
	}
	for _, e := range flat {
		if _, ok := e.(NothingExpr); ok {
			return NothingExpr{}
		}
	}
	switch len(flat) {
	case 0:
		return NothingExpr{}
	case 1:
		return flat[0]
	}
	return AndExpr{Exprs: flat}
}

// Or disjoins expressions. Nil and Nothing operands contribute no term; with
// no terms left the disjunction matches nothing.
func Or(exprs ...Expr) Expr {
	kept := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if nested, ok := e.(OrExpr); ok {
			kept = append(kept, nested.Exprs...)
			continue
		}
		if _, ok := e.(NothingExpr); ok {
			continue
		}
		kept = append(kept, e)
	}
	switch len(kept) {
	case 0:
		return NothingExpr{}
	case 1:
		return kept[0]
	}
	return OrExpr{Exprs: kept}
}
