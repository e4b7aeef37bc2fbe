package model

// Model-type nodes produced by the type registry and the compiler.

// Kind is the scalar kind of a primitive type.
type Kind string

const (
	KindObject    Kind = "object"
	KindString    Kind = "string"
	KindInteger   Kind = "integer"
	KindNumber    Kind = "number"
	KindBoolean   Kind = "boolean"
	KindByteArray Kind = "bytearray"
)

// ModelType is a polymorphic type node. Implementations are *Primitive,
// *Composite, *Collection and *None.
type ModelType interface {
	// TypeName is the display/registration name of the type. Composites use
	// their registered name; primitives their kind.
	TypeName() string
}

// Primitive is a scalar kind.
type Primitive struct {
	Kind Kind
}

func (p *Primitive) TypeName() string { return string(p.Kind) }

// Object returns the generic object type, the common ceiling of every
// inheritance chain.
func Object() *Primitive { return &Primitive{Kind: KindObject} }

// Property is a named member of a composite type.
type Property struct {
	Name string
	Type ModelType
}

// Composite is a named structured type with ordered properties and an
// optional declared base type.
type Composite struct {
	Name       string
	BaseType   string // "" when the composite declares no base
	Properties []Property
}

func (c *Composite) TypeName() string { return c.Name }

// HasPropertyKind reports whether any property is a primitive of kind k.
func (c *Composite) HasPropertyKind(k Kind) bool {
	for _, p := range c.Properties {
		if prim, ok := p.Type.(*Primitive); ok && prim.Kind == k {
			return true
		}
	}
	return false
}

// Collection is a sequence of elements of one type.
type Collection struct {
	Element ModelType
}

func (c *Collection) TypeName() string {
	if c.Element == nil {
		return "[]"
	}
	return "[]" + c.Element.TypeName()
}

// None represents the absence of a type, e.g. a method with no response
// headers.
type None struct{}

func (*None) TypeName() string { return "" }

// Equal reports structural equality. Composites compare by registered name
// and property name set, never by identity.
func Equal(a, b ModelType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Kind == y.Kind
	case *Composite:
		y, ok := b.(*Composite)
		if !ok || x.Name != y.Name || len(x.Properties) != len(y.Properties) {
			return false
		}
		names := make(map[string]struct{}, len(x.Properties))
		for _, p := range x.Properties {
			names[p.Name] = struct{}{}
		}
		for _, p := range y.Properties {
			if _, ok := names[p.Name]; !ok {
				return false
			}
		}
		return true
	case *Collection:
		y, ok := b.(*Collection)
		return ok && Equal(x.Element, y.Element)
	case *None:
		_, ok := b.(*None)
		return ok
	}
	return false
}
