package terraform

import (
	"strconv"
	"strings"

	"github.com/connect-util/connect-util/pkg/hcldoc"
)

// Extract converts an expression to a flat string. It reports false for
// expressions that have no string form, such as objects and traversals.
//
// Variables render as "var.<name>"; join calls whose first argument is an
// array render their extractable elements joined by ", "; any other call
// renders as "<name>(...)"; arrays render as "[a, b]".
func Extract(expr hcldoc.Expression) (string, bool) {
	switch e := expr.(type) {
	case hcldoc.String:
		return e.Value, true
	case hcldoc.Variable:
		return "var." + e.Name, true
	case hcldoc.FuncCall:
		if e.Name == "join" && len(e.Args) > 0 {
			if arr, ok := e.Args[0].(hcldoc.Array); ok {
				return strings.Join(extractAll(arr.Items), ", "), true
			}
		}
		return e.Name + "(...)", true
	case hcldoc.Array:
		return "[" + strings.Join(extractAll(e.Items), ", ") + "]", true
	case hcldoc.Number:
		return e.Text(), true
	case hcldoc.Bool:
		return strconv.FormatBool(e.Value), true
	default:
		return "", false
	}
}

func extractAll(items []hcldoc.Expression) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := Extract(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// ExtractObject converts an object expression to a map of key text to
// extracted value, dropping entries whose value has no string form.
// It reports false if expr is not an object.
func ExtractObject(expr hcldoc.Expression) (map[string]string, bool) {
	obj, ok := expr.(hcldoc.Object)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(obj.Items))
	for _, item := range obj.Items {
		if v, ok := Extract(item.Value); ok {
			out[item.Key.Name] = v
		}
	}
	return out, true
}
