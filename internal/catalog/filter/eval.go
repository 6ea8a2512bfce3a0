package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Fields exposes a move's filterable values.
type Fields struct {
	ID       string
	Name     string
	Type     string
	Category string
	Power    int
	Accuracy int
}

func (f Fields) value(name string) any {
	switch name {
	case FieldID:
		return f.ID
	case FieldName:
		return f.Name
	case FieldType:
		return strings.ToLower(f.Type)
	case FieldCategory:
		return strings.ToLower(f.Category)
	case FieldPower:
		return int64(f.Power)
	case FieldAccuracy:
		return int64(f.Accuracy)
	default:
		return nil
	}
}

// Matches evaluates the filter against fields.
func (f Filter) Matches(fields Fields) (bool, error) {
	if f.expr == nil {
		return true, nil
	}
	return evaluate(f.expr, fields)
}

func evaluate(e *expr.Expr, fields Fields) (bool, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return false, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}
	fn := call.CallExpr.GetFunction()
	args := call.CallExpr.GetArgs()

	switch fn {
	case filtering.FunctionAnd:
		if len(args) != 2 {
			return false, fmt.Errorf("AND requires 2 arguments")
		}
		left, err := evaluate(args[0], fields)
		if err != nil || !left {
			return false, err
		}
		return evaluate(args[1], fields)
	case filtering.FunctionOr:
		if len(args) != 2 {
			return false, fmt.Errorf("OR requires 2 arguments")
		}
		left, err := evaluate(args[0], fields)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evaluate(args[1], fields)
	case filtering.FunctionNot:
		if len(args) != 1 {
			return false, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := evaluate(args[0], fields)
		return !inner, err
	}

	if _, ok := comparisonOps[fn]; !ok {
		return false, fmt.Errorf("unsupported function: %s", fn)
	}
	field, want, err := comparisonOperands(args)
	if err != nil {
		return false, err
	}
	cmp, err := compare(fields.value(field), want)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", field, err)
	}
	switch fn {
	case filtering.FunctionEquals:
		return cmp == 0, nil
	case filtering.FunctionNotEquals:
		return cmp != 0, nil
	case filtering.FunctionLessThan:
		return cmp < 0, nil
	case filtering.FunctionLessEquals:
		return cmp <= 0, nil
	case filtering.FunctionGreaterThan:
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

func compare(left, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return strings.Compare(l, r), nil
	case int64:
		var r float64
		switch v := right.(type) {
		case int64:
			r = float64(v)
		case float64:
			r = v
		default:
			return 0, fmt.Errorf("type mismatch: number vs %T", right)
		}
		switch lf := float64(l); {
		case lf < r:
			return -1, nil
		case lf > r:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("unsupported value type: %T", left)
	}
}
