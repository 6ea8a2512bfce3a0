// Package filter parses AIP-160 filter expressions over catalog moves. A
// parsed Filter can be translated to a SQL WHERE fragment for the sqlite
// store or evaluated in memory against a move.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Field names accepted in move filters.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldType     = "type"
	FieldCategory = "category"
	FieldPower    = "power"
	FieldAccuracy = "accuracy"
)

// columns maps filter fields to move table columns.
var columns = map[string]string{
	FieldID:       "id",
	FieldName:     "name",
	FieldType:     "type",
	FieldCategory: "category",
	FieldPower:    "power",
	FieldAccuracy: "accuracy",
}

// caseInsensitive fields hold lowercase enum names; constants are folded
// before comparison so `type = "FIRE"` matches.
var caseInsensitive = map[string]bool{
	FieldType:     true,
	FieldCategory: true,
}

// Declarations returns the field declarations for move filtering.
func Declarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent(FieldID, filtering.TypeString),
		filtering.DeclareIdent(FieldName, filtering.TypeString),
		filtering.DeclareIdent(FieldType, filtering.TypeString),
		filtering.DeclareIdent(FieldCategory, filtering.TypeString),
		filtering.DeclareIdent(FieldPower, filtering.TypeInt),
		filtering.DeclareIdent(FieldAccuracy, filtering.TypeInt),
	)
}

// Filter is a parsed move filter. The zero value matches everything.
type Filter struct {
	expr *expr.Expr
}

// Parse parses filterStr. A blank string yields a filter matching every move.
func Parse(filterStr string) (Filter, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Filter{}, nil
	}
	decls, err := Declarations()
	if err != nil {
		return Filter{}, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Filter{}, fmt.Errorf("parse filter: %w", err)
	}
	return Filter{expr: parsed.CheckedExpr.GetExpr()}, nil
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.expr == nil
}

// SQLCondition is a WHERE clause fragment with positional parameters.
type SQLCondition struct {
	Clause string
	Params []any
}

// SQL translates the filter. An empty filter yields an empty condition.
func (f Filter) SQL() (SQLCondition, error) {
	if f.expr == nil {
		return SQLCondition{}, nil
	}
	return translateExpr(f.expr)
}

func translateExpr(e *expr.Expr) (SQLCondition, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}
	fn := call.CallExpr.GetFunction()
	args := call.CallExpr.GetArgs()

	switch fn {
	case filtering.FunctionAnd, filtering.FunctionOr:
		if len(args) != 2 {
			return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", fn)
		}
		left, err := translateExpr(args[0])
		if err != nil {
			return SQLCondition{}, err
		}
		right, err := translateExpr(args[1])
		if err != nil {
			return SQLCondition{}, err
		}
		return SQLCondition{
			Clause: fmt.Sprintf("(%s %s %s)", left.Clause, fn, right.Clause),
			Params: append(left.Params, right.Params...),
		}, nil
	case filtering.FunctionNot:
		if len(args) != 1 {
			return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := translateExpr(args[0])
		if err != nil {
			return SQLCondition{}, err
		}
		return SQLCondition{Clause: fmt.Sprintf("(NOT %s)", inner.Clause), Params: inner.Params}, nil
	}

	op, ok := comparisonOps[fn]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", fn)
	}
	field, value, err := comparisonOperands(args)
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", columns[field], op),
		Params: []any{value},
	}, nil
}

var comparisonOps = map[string]string{
	filtering.FunctionEquals:        "=",
	filtering.FunctionNotEquals:     "!=",
	filtering.FunctionLessThan:      "<",
	filtering.FunctionLessEquals:    "<=",
	filtering.FunctionGreaterThan:   ">",
	filtering.FunctionGreaterEquals: ">=",
}

func comparisonOperands(args []*expr.Expr) (string, any, error) {
	if len(args) != 2 {
		return "", nil, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return "", nil, fmt.Errorf("expected identifier, got %T", args[0].GetExprKind())
	}
	field := ident.IdentExpr.GetName()
	if _, ok := columns[field]; !ok {
		return "", nil, fmt.Errorf("unknown field: %s", field)
	}
	constant, ok := args[1].GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return "", nil, fmt.Errorf("expected constant, got %T", args[1].GetExprKind())
	}
	value, err := constValue(constant.ConstExpr)
	if err != nil {
		return "", nil, err
	}
	if s, ok := value.(string); ok && caseInsensitive[field] {
		value = strings.ToLower(s)
	}
	return field, value, nil
}

func constValue(c *expr.Constant) (any, error) {
	switch kind := c.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(kind.Uint64Value), nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
