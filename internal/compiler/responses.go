package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2client/internal/model"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// classified is the outcome of interpreting one declared response: the
// response entry for the method plus an optional return-type candidate.
type classified struct {
	response  model.Response
	candidate model.ModelType
}

type classifyInput struct {
	method   *model.Method
	status   string
	rs       spec.ResponseSpec
	produces []string
	pending  *[]model.ModelType
}

// responseStrategies is the fixed-priority decision table for interpreting a
// declared response: JSON body, then stream body, then empty body. A strategy
// returning (nil, nil) does not apply; a response matching none of them is
// unsupported and fails the build.
var responseStrategies = []struct {
	name  string
	apply func(*Context, classifyInput) (*classified, error)
}{
	{"json", (*Context).classifyJSONBody},
	{"stream", (*Context).classifyStreamBody},
	{"empty", (*Context).classifyEmptyBody},
}

func (c *Context) classifyResponse(in classifyInput) (*classified, error) {
	for _, s := range responseStrategies {
		out, err := s.apply(c, in)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
	return nil, &BuildError{
		Code:    UnsupportedResponseMimeType,
		Method:  in.method.QualifiedName(),
		Status:  in.status,
		Message: fmt.Sprintf("unsupported MIME type for response body, status %s", in.status),
	}
}

// classifyJSONBody applies when the operation produces JSON and the response
// declares a schema. The resolved type is named after the schema reference,
// or "{method}{status}Response" for inline schemas.
func (c *Context) classifyJSONBody(in classifyInput) (*classified, error) {
	if in.rs.Schema == nil || !containsJSON(in.produces) {
		return nil, nil
	}
	hint := in.rs.Schema.RefName()
	if hint == "" {
		hint = in.method.Name + in.status + "Response"
	}
	t, err := c.registry.Resolve(in.rs.Schema, hint)
	if err != nil {
		return nil, c.resolveError(in, err)
	}
	c.notePending(in.pending, t)
	return &classified{response: model.Response{Body: t}, candidate: t}, nil
}

// classifyStreamBody applies when the operation produces anything at all and
// the response declares a schema. A composite stream type must carry at least
// one byte-array property; anything else is a configuration error.
func (c *Context) classifyStreamBody(in classifyInput) (*classified, error) {
	if in.rs.Schema == nil || len(in.produces) == 0 {
		return nil, nil
	}
	t, err := c.registry.Resolve(in.rs.Schema, in.method.Name+in.status+"Response")
	if err != nil {
		return nil, c.resolveError(in, err)
	}
	if comp, ok := t.(*model.Composite); ok && !comp.HasPropertyKind(model.KindByteArray) {
		return nil, &BuildError{
			Code:    MissingByteArrayField,
			Method:  in.method.QualifiedName(),
			Status:  in.status,
			Message: fmt.Sprintf("stream response type %q has no byte-array property", comp.Name),
		}
	}
	c.notePending(in.pending, t)
	return &classified{response: model.Response{Body: t}, candidate: t}, nil
}

// classifyEmptyBody handles the remaining cases: no declared schema means an
// absent body; a declared schema with no effective produce list degrades to
// the generic object type, with a warning when the schema actually has
// properties. The warning is emitted before the body is assigned; both
// happen.
func (c *Context) classifyEmptyBody(in classifyInput) (*classified, error) {
	if in.rs.Schema == nil {
		return &classified{}, nil
	}
	if len(in.produces) == 0 {
		if c.schemaHasProperties(in.rs.Schema) {
			c.warnf("method %s, status %s: response declares a body but the operation produces nothing", in.method.QualifiedName(), in.status)
		}
		obj := model.Object()
		return &classified{response: model.Response{Body: obj}, candidate: obj}, nil
	}
	return nil, nil
}

func (c *Context) resolveError(in classifyInput, err error) error {
	return &BuildError{
		Code:    InvalidInput,
		Method:  in.method.QualifiedName(),
		Status:  in.status,
		Message: fmt.Sprintf("response schema: %v", err),
		Cause:   err,
	}
}

// schemaHasProperties unwraps a reference and reports whether the schema
// declares any properties.
func (c *Context) schemaHasProperties(s *spec.SchemaOrRef) bool {
	if s == nil {
		return false
	}
	if name := s.RefName(); name != "" {
		t, ok := c.registry.Lookup(name)
		if !ok {
			return false
		}
		comp, ok := t.(*model.Composite)
		return ok && len(comp.Properties) > 0
	}
	return s.Schema != nil && len(s.Schema.Properties) > 0
}

// buildDefaultResponse handles the distinguished "default" entry, which feeds
// the method's error channel. It only applies when JSON resolution succeeds;
// otherwise no default response is set and no error is raised.
func (c *Context) buildDefaultResponse(m *model.Method, rs spec.ResponseSpec, produces []string, pending *[]model.ModelType) error {
	if rs.Schema == nil || !containsJSON(produces) {
		return nil
	}
	hint := rs.Schema.RefName()
	if hint == "" {
		hint = m.Name + "DefaultResponse"
	}
	t, err := c.registry.Resolve(rs.Schema, hint)
	if err != nil {
		return &BuildError{Code: InvalidInput, Method: m.QualifiedName(), Status: spec.DefaultResponseKey, Message: fmt.Sprintf("default response schema: %v", err), Cause: err}
	}
	c.notePending(pending, t)
	m.DefaultResponse = &model.Response{Body: t}
	return nil
}

// aggregateHeaders merges every header declaration across all responses into
// one composite type per method, named "{group}-{method}-Headers". Later
// declarations of the same header overwrite earlier ones; responses are
// visited in sorted status order with "default" last. Zero headers yield nil,
// never an empty composite.
func (c *Context) aggregateHeaders(m *model.Method, responses map[string]spec.ResponseSpec) (*model.Composite, error) {
	merged := make(map[string]*spec.SchemaOrRef)
	for _, status := range responseOrder(responses) {
		for name, hs := range responses[status].Headers {
			merged[name] = hs
		}
	}
	if len(merged) == 0 {
		return nil, nil
	}
	typeName := strings.Trim(m.Group+"-"+m.Name+"-Headers", "-")
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	props := make([]model.Property, 0, len(names))
	for _, name := range names {
		t, err := c.registry.Resolve(merged[name], typeName+spec.Pascal(name))
		if err != nil {
			return nil, &BuildError{Code: InvalidInput, Method: m.QualifiedName(), Message: fmt.Sprintf("header %q: %v", name, err), Cause: err}
		}
		props = append(props, model.Property{Name: name, Type: t})
	}
	return &model.Composite{Name: typeName, Properties: props}, nil
}

// responseOrder returns the deterministic iteration order for a response map:
// numbered statuses sorted, then "default".
func responseOrder(responses map[string]spec.ResponseSpec) []string {
	keys := make([]string, 0, len(responses))
	for k := range responses {
		if k != spec.DefaultResponseKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := responses[spec.DefaultResponseKey]; ok {
		keys = append(keys, spec.DefaultResponseKey)
	}
	return keys
}
