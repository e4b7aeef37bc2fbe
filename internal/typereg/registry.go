// Package typereg maintains the mapping from schema definitions to model
// types, including the base-type links that drive return-type unification.
package typereg

import (
	"fmt"
	"sort"

	"github.com/mark3labs/swagger2client/internal/model"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Registry resolves schema fragments to model types. It is safe for
// sequential use only; one build call must own it exclusively.
type Registry struct {
	types map[string]model.ModelType
	base  map[string]string // composite name -> declared base type name
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		types: make(map[string]model.ModelType),
		base:  make(map[string]string),
	}
}

// FromDefinitions builds a registry from the normalized definitions of a
// document. allOf chains become base-type links: the first referenced member
// is the declared base, inline members contribute properties.
//
// Definitions may reference each other in any order, so composites are
// registered as named shells first and their properties filled in afterwards.
func FromDefinitions(defs map[string]spec.Schema) (*Registry, error) {
	r := New()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	shells := make(map[string]*model.Composite)
	for _, name := range names {
		schema := defs[name]
		if !isCompositeSchema(schema) {
			continue
		}
		comp := &model.Composite{Name: name, BaseType: declaredBase(schema)}
		shells[name] = comp
		r.types[name] = comp
		if comp.BaseType != "" {
			r.base[name] = comp.BaseType
		}
	}

	// Scalar and array definitions next; their item refs can now resolve.
	for _, name := range names {
		schema := defs[name]
		if isCompositeSchema(schema) {
			continue
		}
		sor := &spec.SchemaOrRef{Schema: &schema}
		t, err := r.Resolve(sor, name)
		if err != nil {
			return nil, fmt.Errorf("definition %q: %w", name, err)
		}
		r.types[name] = t
	}

	for _, name := range names {
		schema := defs[name]
		comp, ok := shells[name]
		if !ok {
			continue
		}
		if err := r.fillProperties(comp, schema); err != nil {
			return nil, fmt.Errorf("definition %q: %w", name, err)
		}
	}
	return r, nil
}

func isCompositeSchema(s spec.Schema) bool {
	if len(s.AllOf) > 0 || len(s.Properties) > 0 {
		return true
	}
	return s.Type == "object" || s.Type == ""
}

// declaredBase returns the base type name of an allOf chain: the first
// referenced member.
func declaredBase(s spec.Schema) string {
	for _, member := range s.AllOf {
		if name := member.RefName(); name != "" {
			return name
		}
	}
	return ""
}

func (r *Registry) fillProperties(comp *model.Composite, s spec.Schema) error {
	if len(s.AllOf) > 0 {
		for _, member := range s.AllOf {
			if member == nil || member.Schema == nil {
				continue
			}
			props, err := r.buildProperties(comp.Name, member.Schema)
			if err != nil {
				return err
			}
			comp.Properties = append(comp.Properties, props...)
		}
		return nil
	}
	props, err := r.buildProperties(comp.Name, &s)
	if err != nil {
		return err
	}
	comp.Properties = props
	return nil
}

func (r *Registry) buildProperties(owner string, s *spec.Schema) ([]model.Property, error) {
	if s == nil || len(s.Properties) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(s.Properties))
	for n := range s.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	props := make([]model.Property, 0, len(names))
	for _, n := range names {
		t, err := r.Resolve(s.Properties[n], owner+spec.Pascal(n))
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", n, err)
		}
		props = append(props, model.Property{Name: n, Type: t})
	}
	return props, nil
}

// Resolve turns a schema reference or inline schema into a model type. Newly
// synthesized composites are NOT registered here; the compiler commits them
// only after a whole build succeeds.
func (r *Registry) Resolve(s *spec.SchemaOrRef, hint string) (model.ModelType, error) {
	if s == nil {
		return nil, fmt.Errorf("nil schema")
	}
	if s.Ref != nil {
		name := s.Ref.Name()
		if t, ok := r.types[name]; ok {
			return t, nil
		}
		return nil, fmt.Errorf("unresolved reference %q", s.Ref.Ref)
	}
	return r.buildInline(s.Schema, hint)
}

func (r *Registry) buildInline(s *spec.Schema, hint string) (model.ModelType, error) {
	if s == nil {
		return model.Object(), nil
	}
	switch s.Type {
	case "array":
		if s.Items == nil {
			return &model.Collection{Element: model.Object()}, nil
		}
		elem, err := r.Resolve(s.Items, hint+"Item")
		if err != nil {
			return nil, err
		}
		return &model.Collection{Element: elem}, nil
	case "string":
		if s.Format == "byte" || s.Format == "binary" {
			return &model.Primitive{Kind: model.KindByteArray}, nil
		}
		return &model.Primitive{Kind: model.KindString}, nil
	case "integer":
		return &model.Primitive{Kind: model.KindInteger}, nil
	case "number":
		return &model.Primitive{Kind: model.KindNumber}, nil
	case "boolean":
		return &model.Primitive{Kind: model.KindBoolean}, nil
	case "file":
		return &model.Primitive{Kind: model.KindByteArray}, nil
	case "object", "":
		if len(s.Properties) == 0 {
			return model.Object(), nil
		}
		name := s.Name
		if name == "" {
			name = hint
		}
		props, err := r.buildProperties(name, s)
		if err != nil {
			return nil, err
		}
		return &model.Composite{Name: name, Properties: props}, nil
	default:
		return nil, fmt.Errorf("unsupported schema type %q", s.Type)
	}
}

// BaseTypeOf returns the declared base type of a registered composite.
func (r *Registry) BaseTypeOf(name string) (string, bool) {
	base, ok := r.base[name]
	return base, ok
}

// Lookup returns the registered type with the given name.
func (r *Registry) Lookup(name string) (model.ModelType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Register records a type under its name. Composites also record their
// base-type link. Registering an unnamed type is a no-op.
func (r *Registry) Register(t model.ModelType) {
	name := t.TypeName()
	if name == "" {
		return
	}
	r.types[name] = t
	if comp, ok := t.(*model.Composite); ok && comp.BaseType != "" {
		r.base[comp.Name] = comp.BaseType
	}
}
