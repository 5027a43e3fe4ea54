package hcldoc

import (
	"math/big"
	"strings"
)

// File is a parsed or generated configuration document.
type File struct {
	Body *Body
}

// NewFile creates an empty document.
func NewFile() *File {
	return &File{Body: &Body{}}
}

// Item is an element of a Body: either an *Attribute or a *Block.
type Item interface {
	isItem()
}

// Body is an ordered sequence of attributes and nested blocks.
type Body struct {
	Items []Item
}

// Attribute is a name = expression pair.
type Attribute struct {
	Name string
	Expr Expression
}

// Block is a typed, optionally labeled, nested body.
type Block struct {
	Type   string
	Labels []string
	Body   *Body
}

func (*Attribute) isItem() {}
func (*Block) isItem()     {}

// AppendAttribute adds an attribute at the end of the body.
func (b *Body) AppendAttribute(name string, expr Expression) *Attribute {
	attr := &Attribute{Name: name, Expr: expr}
	b.Items = append(b.Items, attr)
	return attr
}

// AppendBlock adds an empty block at the end of the body and returns it.
func (b *Body) AppendBlock(blockType string, labels ...string) *Block {
	block := &Block{Type: blockType, Labels: labels, Body: &Body{}}
	b.Items = append(b.Items, block)
	return block
}

// Attributes returns the direct attributes of the body in document order.
func (b *Body) Attributes() []*Attribute {
	var attrs []*Attribute
	for _, item := range b.Items {
		if attr, ok := item.(*Attribute); ok {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

// Blocks returns the direct nested blocks of the body in document order.
func (b *Body) Blocks() []*Block {
	var blocks []*Block
	for _, item := range b.Items {
		if block, ok := item.(*Block); ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// Attribute returns the first attribute with the given name.
func (b *Body) Attribute(name string) (*Attribute, bool) {
	for _, attr := range b.Attributes() {
		if attr.Name == name {
			return attr, true
		}
	}
	return nil, false
}

// Block returns the first nested block of the given type.
func (b *Body) Block(blockType string) (*Block, bool) {
	for _, block := range b.Blocks() {
		if block.Type == blockType {
			return block, true
		}
	}
	return nil, false
}

// Expression is one of the expression variants defined in this package.
type Expression interface {
	isExpression()
}

// String is a literal string with no interpolation.
type String struct {
	Value string
}

// Number is a literal number.
type Number struct {
	Value *big.Float
}

// Bool is a literal boolean.
type Bool struct {
	Value bool
}

// Null is the literal null.
type Null struct{}

// Array is a tuple constructor: [a, b, c].
type Array struct {
	Items []Expression
}

// Object is an object constructor with ordered items.
type Object struct {
	Items []ObjectItem
}

// ObjectItem is one key = value pair of an Object.
type ObjectItem struct {
	Key   ObjectKey
	Value Expression
}

// ObjectKey is the literal text of an object key. Quoted keys are written as
// string literals, all others as bare identifiers.
type ObjectKey struct {
	Name   string
	Quoted bool
}

// Variable is a bare reference to a single root name, such as `status`.
type Variable struct {
	Name string
}

// Traversal is a root name followed by at least one attribute or index step,
// such as var.kafka_cluster.id or config_nonsensitive["tasks.max"].
type Traversal struct {
	Root  string
	Steps []Step
}

// Step is one element of a Traversal after the root.
type Step struct {
	// Attr is set for .name steps.
	Attr string
	// Index is set for ["key"] steps.
	Index string
	// IsIndex distinguishes an index step from an attribute step.
	IsIndex bool
	// IndexNumber marks a numeric index such as [0]. Index then holds its
	// decimal text.
	IndexNumber bool
}

// FuncCall is a function call with positional arguments.
type FuncCall struct {
	Name        string
	Args        []Expression
	ExpandFinal bool
}

// Unsupported is any expression outside the model, such as a template with
// interpolation, a conditional, or a for expression.
type Unsupported struct {
	Source string
}

func (String) isExpression()      {}
func (Number) isExpression()      {}
func (Bool) isExpression()        {}
func (Null) isExpression()        {}
func (Array) isExpression()       {}
func (Object) isExpression()      {}
func (Variable) isExpression()    {}
func (Traversal) isExpression()   {}
func (FuncCall) isExpression()    {}
func (Unsupported) isExpression() {}

// Key builds an object key, quoting it when the text contains a dot.
func Key(name string) ObjectKey {
	return ObjectKey{Name: name, Quoted: strings.Contains(name, ".")}
}

// Set inserts or replaces the value stored under key. A replaced entry keeps
// its original position.
func (o *Object) Set(key ObjectKey, value Expression) {
	for i := range o.Items {
		if o.Items[i].Key.Name == key.Name {
			o.Items[i] = ObjectItem{Key: key, Value: value}
			return
		}
	}
	o.Items = append(o.Items, ObjectItem{Key: key, Value: value})
}

// Has reports whether an item with the given key text exists.
func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Get returns the value stored under the given key text.
func (o *Object) Get(name string) (Expression, bool) {
	for _, item := range o.Items {
		if item.Key.Name == name {
			return item.Value, true
		}
	}
	return nil, false
}

// Ref builds a reference expression from a dotted path. A single segment
// yields a Variable, longer paths yield a Traversal of attribute steps.
func Ref(path string) Expression {
	parts := strings.Split(path, ".")
	if len(parts) == 1 {
		return Variable{Name: parts[0]}
	}
	steps := make([]Step, 0, len(parts)-1)
	for _, p := range parts[1:] {
		steps = append(steps, Step{Attr: p})
	}
	return Traversal{Root: parts[0], Steps: steps}
}

// IndexRef builds root["key"].
func IndexRef(root, key string) Traversal {
	return Traversal{Root: root, Steps: []Step{{Index: key, IsIndex: true}}}
}

// Text returns the decimal form of the number.
func (n Number) Text() string {
	if n.Value == nil {
		return "0"
	}
	return n.Value.Text('f', -1)
}
