package hcldoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Parser reads configuration source text into a File.
type Parser interface {
	Parse(src []byte, filename string) (*File, error)
}

// Printer renders a File as canonical configuration source text.
type Printer interface {
	Print(file *File) ([]byte, error)
}

// HCL implements Parser and Printer with github.com/hashicorp/hcl/v2.
type HCL struct{}

// NewHCL returns the HCL parser/printer.
func NewHCL() *HCL {
	return &HCL{}
}

var (
	_ Parser  = (*HCL)(nil)
	_ Printer = (*HCL)(nil)
)

// ParseError reports syntax errors found while parsing a document.
type ParseError struct {
	Filename    string
	Line        int
	Column      int
	Diagnostics hcl.Diagnostics
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Diagnostics.Error()
}

// InvalidIdentifierError is returned by Print when an attribute name, block
// type, unquoted object key, or reference name is not a valid identifier.
type InvalidIdentifierError struct {
	Text string
}

// Error implements the error interface.
func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier '%s'", e.Text)
}

// Parse parses src as a native-syntax HCL document.
func (h *HCL) Parse(src []byte, filename string) (*File, error) {
	f, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		perr := &ParseError{Filename: filename, Diagnostics: diags}
		for _, d := range diags {
			if d.Severity == hcl.DiagError && d.Subject != nil {
				perr.Line = d.Subject.Start.Line
				perr.Column = d.Subject.Start.Column
				break
			}
		}
		return nil, perr
	}

	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type %T", f.Body)
	}

	return &File{Body: convertBody(body, src)}, nil
}

type positioned struct {
	offset int
	item   Item
}

func convertBody(body *hclsyntax.Body, src []byte) *Body {
	items := make([]positioned, 0, len(body.Attributes)+len(body.Blocks))

	// Attributes is a map; source offsets restore document order.
	for _, attr := range body.Attributes {
		items = append(items, positioned{
			offset: attr.SrcRange.Start.Byte,
			item:   &Attribute{Name: attr.Name, Expr: convertExpr(attr.Expr, src)},
		})
	}
	for _, block := range body.Blocks {
		items = append(items, positioned{
			offset: block.TypeRange.Start.Byte,
			item: &Block{
				Type:   block.Type,
				Labels: append([]string(nil), block.Labels...),
				Body:   convertBody(block.Body, src),
			},
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].offset < items[j].offset
	})

	out := &Body{Items: make([]Item, 0, len(items))}
	for _, p := range items {
		out.Items = append(out.Items, p.item)
	}
	return out
}

func convertExpr(expr hclsyntax.Expression, src []byte) Expression {
	switch e := expr.(type) {
	case *hclsyntax.TemplateExpr:
		var sb strings.Builder
		for _, part := range e.Parts {
			lit, ok := part.(*hclsyntax.LiteralValueExpr)
			if !ok || lit.Val.Type() != cty.String {
				return unsupported(expr, src)
			}
			sb.WriteString(lit.Val.AsString())
		}
		return String{Value: sb.String()}

	case *hclsyntax.LiteralValueExpr:
		return convertLiteral(e, src)

	case *hclsyntax.TupleConsExpr:
		items := make([]Expression, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			items = append(items, convertExpr(item, src))
		}
		return Array{Items: items}

	case *hclsyntax.ObjectConsExpr:
		obj := Object{Items: make([]ObjectItem, 0, len(e.Items))}
		for _, item := range e.Items {
			key, ok := convertKey(item.KeyExpr, src)
			if !ok {
				continue
			}
			obj.Items = append(obj.Items, ObjectItem{Key: key, Value: convertExpr(item.ValueExpr, src)})
		}
		return obj

	case *hclsyntax.ScopeTraversalExpr:
		return convertTraversal(e.Traversal, expr, src)

	case *hclsyntax.FunctionCallExpr:
		args := make([]Expression, 0, len(e.Args))
		for _, arg := range e.Args {
			args = append(args, convertExpr(arg, src))
		}
		return FuncCall{Name: e.Name, Args: args, ExpandFinal: e.ExpandFinal}

	case *hclsyntax.ParenthesesExpr:
		return convertExpr(e.Expression, src)

	default:
		return unsupported(expr, src)
	}
}

func convertLiteral(e *hclsyntax.LiteralValueExpr, src []byte) Expression {
	v := e.Val
	switch {
	case v.IsNull():
		return Null{}
	case v.Type() == cty.Bool:
		return Bool{Value: v.True()}
	case v.Type() == cty.Number:
		return Number{Value: v.AsBigFloat()}
	case v.Type() == cty.String:
		return String{Value: v.AsString()}
	default:
		return unsupported(e, src)
	}
}

// convertKey returns the literal text of an object key. Keys computed from
// references or other expressions have no literal text and are reported as
// not ok.
func convertKey(expr hclsyntax.Expression, src []byte) (ObjectKey, bool) {
	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		return ObjectKey{Name: kw}, true
	}

	wrapped := expr
	if k, ok := expr.(*hclsyntax.ObjectConsKeyExpr); ok {
		wrapped = k.Wrapped
	}

	switch v := convertExpr(wrapped, src).(type) {
	case String:
		return ObjectKey{Name: v.Value, Quoted: true}, true
	case Number:
		return ObjectKey{Name: v.Text()}, true
	default:
		return ObjectKey{}, false
	}
}

func convertTraversal(trav hcl.Traversal, expr hclsyntax.Expression, src []byte) Expression {
	if len(trav) == 0 {
		return unsupported(expr, src)
	}
	root, ok := trav[0].(hcl.TraverseRoot)
	if !ok {
		return unsupported(expr, src)
	}
	if len(trav) == 1 {
		return Variable{Name: root.Name}
	}

	steps := make([]Step, 0, len(trav)-1)
	for _, t := range trav[1:] {
		switch s := t.(type) {
		case hcl.TraverseAttr:
			steps = append(steps, Step{Attr: s.Name})
		case hcl.TraverseIndex:
			switch s.Key.Type() {
			case cty.String:
				steps = append(steps, Step{Index: s.Key.AsString(), IsIndex: true})
			case cty.Number:
				steps = append(steps, Step{Index: s.Key.AsBigFloat().Text('f', -1), IsIndex: true, IndexNumber: true})
			default:
				return unsupported(expr, src)
			}
		default:
			return unsupported(expr, src)
		}
	}
	return Traversal{Root: root.Name, Steps: steps}
}

func unsupported(expr hclsyntax.Expression, src []byte) Unsupported {
	return Unsupported{Source: string(expr.Range().SliceBytes(src))}
}

// Print renders the file with hclwrite and applies canonical formatting.
func (h *HCL) Print(file *File) ([]byte, error) {
	out := hclwrite.NewEmptyFile()
	if file != nil && file.Body != nil {
		if err := writeBody(out.Body(), file.Body); err != nil {
			return nil, err
		}
	}
	return hclwrite.Format(out.Bytes()), nil
}

func writeBody(dst *hclwrite.Body, body *Body) error {
	for _, item := range body.Items {
		switch it := item.(type) {
		case *Attribute:
			if !hclsyntax.ValidIdentifier(it.Name) {
				return &InvalidIdentifierError{Text: it.Name}
			}
			toks, err := exprTokens(it.Expr)
			if err != nil {
				return fmt.Errorf("attribute %s: %w", it.Name, err)
			}
			dst.SetAttributeRaw(it.Name, toks)

		case *Block:
			if !hclsyntax.ValidIdentifier(it.Type) {
				return &InvalidIdentifierError{Text: it.Type}
			}
			nested := dst.AppendNewBlock(it.Type, it.Labels)
			if it.Body != nil {
				if err := writeBody(nested.Body(), it.Body); err != nil {
					return fmt.Errorf("block %s: %w", it.Type, err)
				}
			}
		}
	}
	return nil
}

func exprTokens(expr Expression) (hclwrite.Tokens, error) {
	switch e := expr.(type) {
	case String:
		return hclwrite.TokensForValue(cty.StringVal(e.Value)), nil

	case Number:
		if e.Value == nil {
			return hclwrite.TokensForValue(cty.Zero), nil
		}
		return hclwrite.TokensForValue(cty.NumberVal(e.Value)), nil

	case Bool:
		return hclwrite.TokensForValue(cty.BoolVal(e.Value)), nil

	case Null:
		return hclwrite.TokensForValue(cty.NullVal(cty.DynamicPseudoType)), nil

	case Array:
		elems := make([]hclwrite.Tokens, 0, len(e.Items))
		for _, item := range e.Items {
			toks, err := exprTokens(item)
			if err != nil {
				return nil, err
			}
			elems = append(elems, toks)
		}
		return hclwrite.TokensForTuple(elems), nil

	case Object:
		attrs := make([]hclwrite.ObjectAttrTokens, 0, len(e.Items))
		for _, item := range e.Items {
			name, err := keyTokens(item.Key)
			if err != nil {
				return nil, err
			}
			value, err := exprTokens(item.Value)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, hclwrite.ObjectAttrTokens{Name: name, Value: value})
		}
		return hclwrite.TokensForObject(attrs), nil

	case Variable:
		if !hclsyntax.ValidIdentifier(e.Name) {
			return nil, &InvalidIdentifierError{Text: e.Name}
		}
		return hclwrite.TokensForIdentifier(e.Name), nil

	case Traversal:
		trav, err := e.hclTraversal()
		if err != nil {
			return nil, err
		}
		return hclwrite.TokensForTraversal(trav), nil

	case FuncCall:
		if !hclsyntax.ValidIdentifier(e.Name) {
			return nil, &InvalidIdentifierError{Text: e.Name}
		}
		args := make([]hclwrite.Tokens, 0, len(e.Args))
		for _, arg := range e.Args {
			toks, err := exprTokens(arg)
			if err != nil {
				return nil, err
			}
			args = append(args, toks)
		}
		toks := hclwrite.TokensForFunctionCall(e.Name, args...)
		if e.ExpandFinal && len(args) > 0 {
			closing := toks[len(toks)-1]
			toks = append(toks[:len(toks)-1], &hclwrite.Token{
				Type:  hclsyntax.TokenEllipsis,
				Bytes: []byte("..."),
			}, closing)
		}
		return toks, nil

	case Unsupported:
		return nil, fmt.Errorf("cannot print unsupported expression %q", e.Source)

	default:
		return nil, fmt.Errorf("cannot print expression of type %T", expr)
	}
}

func keyTokens(key ObjectKey) (hclwrite.Tokens, error) {
	if key.Quoted {
		return hclwrite.TokensForValue(cty.StringVal(key.Name)), nil
	}
	if !hclsyntax.ValidIdentifier(key.Name) {
		return nil, &InvalidIdentifierError{Text: key.Name}
	}
	return hclwrite.TokensForIdentifier(key.Name), nil
}

func (t Traversal) hclTraversal() (hcl.Traversal, error) {
	if !hclsyntax.ValidIdentifier(t.Root) {
		return nil, &InvalidIdentifierError{Text: t.Root}
	}
	trav := hcl.Traversal{hcl.TraverseRoot{Name: t.Root}}
	for _, step := range t.Steps {
		if step.IsIndex {
			key := cty.StringVal(step.Index)
			if step.IndexNumber {
				n, err := cty.ParseNumberVal(step.Index)
				if err != nil {
					return nil, &InvalidIdentifierError{Text: step.Index}
				}
				key = n
			}
			trav = append(trav, hcl.TraverseIndex{Key: key})
			continue
		}
		if !hclsyntax.ValidIdentifier(step.Attr) {
			return nil, &InvalidIdentifierError{Text: step.Attr}
		}
		trav = append(trav, hcl.TraverseAttr{Name: step.Attr})
	}
	return trav, nil
}
