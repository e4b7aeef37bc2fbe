package typereg

import (
	"strings"
	"testing"

	"github.com/mark3labs/swagger2client/internal/model"
	"github.com/mark3labs/swagger2client/internal/spec"
)

func refTo(name string) *spec.SchemaOrRef {
	return &spec.SchemaOrRef{Ref: &spec.SchemaRef{Ref: "#/definitions/" + name}}
}

func inlineOf(s *spec.Schema) *spec.SchemaOrRef { return &spec.SchemaOrRef{Schema: s} }

func typed(typ, format string) *spec.SchemaOrRef {
	return inlineOf(&spec.Schema{Type: typ, Format: format})
}

func sampleDefinitions() map[string]spec.Schema {
	return map[string]spec.Schema{
		"Animal": {Type: "object", Properties: map[string]*spec.SchemaOrRef{
			"name": typed("string", ""),
		}},
		"Dog": {AllOf: []*spec.SchemaOrRef{
			refTo("Animal"),
			inlineOf(&spec.Schema{Type: "object", Properties: map[string]*spec.SchemaOrRef{
				"bark": typed("boolean", ""),
			}}),
		}},
		// Sorts before "Dog" yet references it; shell registration makes the
		// forward reference resolvable.
		"AllDogs": {Type: "array", Items: refTo("Dog")},
		"Color":   {Type: "string", Enum: []any{"red", "green"}},
	}
}

func TestFromDefinitionsComposites(t *testing.T) {
	t.Parallel()

	r, err := FromDefinitions(sampleDefinitions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	dog, ok := r.Lookup("Dog")
	if !ok {
		t.Fatalf("Dog not registered")
	}
	comp, ok := dog.(*model.Composite)
	if !ok {
		t.Fatalf("Dog: got %T", dog)
	}
	if comp.BaseType != "Animal" {
		t.Errorf("Dog base: got %q", comp.BaseType)
	}
	if len(comp.Properties) != 1 || comp.Properties[0].Name != "bark" {
		t.Errorf("Dog properties: got %+v", comp.Properties)
	}

	base, ok := r.BaseTypeOf("Dog")
	if !ok || base != "Animal" {
		t.Errorf("BaseTypeOf(Dog): got %q, %v", base, ok)
	}
	if _, ok := r.BaseTypeOf("Animal"); ok {
		t.Errorf("Animal must not declare a base")
	}
}

func TestFromDefinitionsForwardReferences(t *testing.T) {
	t.Parallel()

	r, err := FromDefinitions(sampleDefinitions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	all, ok := r.Lookup("AllDogs")
	if !ok {
		t.Fatalf("AllDogs not registered")
	}
	coll, ok := all.(*model.Collection)
	if !ok {
		t.Fatalf("AllDogs: got %T", all)
	}
	if coll.Element.TypeName() != "Dog" {
		t.Errorf("element: got %q", coll.Element.TypeName())
	}

	// The element is the same instance as the registered Dog, so properties
	// filled after shell registration are visible through the collection.
	elem := coll.Element.(*model.Composite)
	if len(elem.Properties) != 1 {
		t.Errorf("element properties: got %+v", elem.Properties)
	}
}

func TestFromDefinitionsScalars(t *testing.T) {
	t.Parallel()

	r, err := FromDefinitions(sampleDefinitions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	color, ok := r.Lookup("Color")
	if !ok {
		t.Fatalf("Color not registered")
	}
	prim, ok := color.(*model.Primitive)
	if !ok || prim.Kind != model.KindString {
		t.Errorf("Color: got %v", color)
	}
}

func TestResolveInlineSchemas(t *testing.T) {
	t.Parallel()

	r, err := FromDefinitions(sampleDefinitions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	cases := []struct {
		name string
		in   *spec.SchemaOrRef
		want string
	}{
		{"byte string", typed("string", "byte"), "bytearray"},
		{"binary string", typed("string", "binary"), "bytearray"},
		{"file", typed("file", ""), "bytearray"},
		{"plain string", typed("string", ""), "string"},
		{"integer", typed("integer", "int64"), "integer"},
		{"number", typed("number", ""), "number"},
		{"boolean", typed("boolean", ""), "boolean"},
		{"untyped", inlineOf(&spec.Schema{}), "object"},
		{"object without properties", inlineOf(&spec.Schema{Type: "object"}), "object"},
		{"array of refs", inlineOf(&spec.Schema{Type: "array", Items: refTo("Dog")}), "[]Dog"},
		{"array without items", inlineOf(&spec.Schema{Type: "array"}), "[]object"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Resolve(tc.in, "Hint")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.TypeName() != tc.want {
				t.Errorf("got %q, want %q", got.TypeName(), tc.want)
			}
		})
	}
}

func TestResolveInlineObjectUsesHint(t *testing.T) {
	t.Parallel()

	r, err := FromDefinitions(sampleDefinitions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	in := inlineOf(&spec.Schema{Type: "object", Properties: map[string]*spec.SchemaOrRef{
		"total": typed("integer", ""),
	}})
	got, err := r.Resolve(in, "getStats200Response")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	comp, ok := got.(*model.Composite)
	if !ok || comp.Name != "getStats200Response" {
		t.Fatalf("got %v", got)
	}

	// Resolve synthesizes but never registers; commits happen elsewhere.
	if _, ok := r.Lookup("getStats200Response"); ok {
		t.Errorf("Resolve must not register synthesized types")
	}
	r.Register(comp)
	if _, ok := r.Lookup("getStats200Response"); !ok {
		t.Errorf("Register must make the type visible")
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	r, err := FromDefinitions(sampleDefinitions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, err := r.Resolve(nil, ""); err == nil {
		t.Errorf("nil schema must fail")
	}
	if _, err := r.Resolve(refTo("Missing"), ""); err == nil || !strings.Contains(err.Error(), "unresolved reference") {
		t.Errorf("unresolved ref: got %v", err)
	}
	if _, err := r.Resolve(typed("uuid", ""), ""); err == nil || !strings.Contains(err.Error(), "unsupported schema type") {
		t.Errorf("unsupported type: got %v", err)
	}
}

func TestRegisterRecordsBaseLinks(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register(&model.Composite{Name: "Animal"})
	r.Register(&model.Composite{Name: "Dog", BaseType: "Animal"})

	base, ok := r.BaseTypeOf("Dog")
	if !ok || base != "Animal" {
		t.Errorf("base: got %q, %v", base, ok)
	}

	// Unnamed composites are silently skipped.
	r.Register(&model.Composite{})
	if _, ok := r.Lookup(""); ok {
		t.Errorf("unnamed type registered")
	}
}
