// Package compiler transforms normalized operation descriptions into
// emission-ready method models: it reconciles parameter name collisions,
// classifies declared responses, synthesizes header and error types, and
// unifies the return type across success responses.
package compiler

import (
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2client/internal/codemodel"
	"github.com/mark3labs/swagger2client/internal/model"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// TypeRegistry is the external collaborator that turns schema fragments into
// model types and tracks inheritance chains.
type TypeRegistry interface {
	Resolve(s *spec.SchemaOrRef, hint string) (model.ModelType, error)
	BaseTypeOf(name string) (string, bool)
	Lookup(name string) (model.ModelType, bool)
	Register(t model.ModelType)
}

// ContextOption configures a build context.
type ContextOption func(*Context)

// WithServiceDefaults sets the service-wide produce/consume MIME lists that
// operations fall back to.
func WithServiceDefaults(produces, consumes []string) ContextOption {
	return func(c *Context) {
		c.defaultProduces = produces
		c.defaultConsumes = consumes
	}
}

// WithFormatter overrides the parameter serialization formatter.
func WithFormatter(f Formatter) ContextOption {
	return func(c *Context) {
		if f != nil {
			c.formatter = f
		}
	}
}

// Context owns the shared state of one compilation run: the type registry,
// the code model collecting output, service MIME defaults, the method
// uniqueness set and accumulated warnings. Builds sharing one Context are not
// safe to run concurrently; callers process operations sequentially or hold
// exclusive access for the duration of one build call.
type Context struct {
	registry        TypeRegistry
	code            *codemodel.Model
	formatter       Formatter
	defaultProduces []string
	defaultConsumes []string
	built           map[string]struct{}
	warnings        []string
}

// NewContext constructs a build context. The registry and code model are
// required.
func NewContext(registry TypeRegistry, code *codemodel.Model, opts ...ContextOption) (*Context, error) {
	if registry == nil {
		return nil, &BuildError{Code: InvalidInput, Message: "compiler: nil type registry"}
	}
	if code == nil {
		return nil, &BuildError{Code: InvalidInput, Message: "compiler: nil code model"}
	}
	c := &Context{
		registry:  registry,
		code:      code,
		formatter: templateFormatter{},
		built:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Warnings returns the non-fatal diagnostics accumulated so far.
func (c *Context) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

func (c *Context) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// BuildMethod compiles one operation into a method. On any fatal error no
// method is returned and nothing is registered: synthesized types and the
// method itself become visible only after every step succeeded.
func (c *Context) BuildMethod(group string, op *spec.OperationSpec) (*model.Method, error) {
	if op == nil {
		return nil, &BuildError{Code: InvalidInput, Message: "compiler: nil operation"}
	}
	if strings.TrimSpace(op.Name) == "" {
		return nil, &BuildError{Code: InvalidInput, Message: fmt.Sprintf("compiler: operation %q has no method name", op.ID)}
	}

	m := &model.Method{
		Name:           op.Name,
		Group:          group,
		HTTPMethod:     string(op.Method),
		URLTemplate:    op.Path,
		Summary:        op.Summary,
		Description:    op.Description,
		Deprecated:     op.Deprecated,
		RequestHeaders: make(map[string]string),
		Responses:      make(map[string]model.Response),
	}

	produces := effectiveList(op.Produces, c.defaultProduces)
	consumes := effectiveList(op.Consumes, c.defaultConsumes)
	m.RequestContentType = requestContentType(consumes)

	// pending collects types synthesized during this build; they are
	// committed to the registry and code model only at the end.
	var pending []model.ModelType

	if err := c.buildParameters(m, op.Parameters, &pending); err != nil {
		return nil, err
	}

	headers, err := c.aggregateHeaders(m, op.Responses)
	if err != nil {
		return nil, err
	}

	var candidates []model.ModelType
	for _, status := range responseOrder(op.Responses) {
		rs := op.Responses[status]
		if status == spec.DefaultResponseKey {
			if err := c.buildDefaultResponse(m, rs, produces, &pending); err != nil {
				return nil, err
			}
			if m.DefaultResponse != nil && len(rs.Headers) > 0 && headers != nil {
				m.DefaultResponse.Headers = headers
			}
			continue
		}
		out, err := c.classifyResponse(classifyInput{
			method:   m,
			status:   status,
			rs:       rs,
			produces: produces,
			pending:  &pending,
		})
		if err != nil {
			return nil, err
		}
		resp := out.response
		if len(rs.Headers) > 0 && headers != nil {
			resp.Headers = headers
		}
		m.Responses[status] = resp
		if out.candidate != nil {
			candidates = append(candidates, out.candidate)
		}
	}

	m.ReturnType = model.ReturnType{Body: c.unifyReturnType(candidates)}
	if headers != nil {
		m.ReturnType.Headers = headers
	}

	// A success response whose body matches the error type adds nothing over
	// the error channel; drop it.
	if m.DefaultResponse != nil && m.DefaultResponse.Body != nil {
		for status, r := range m.Responses {
			if r.Body != nil && model.Equal(r.Body, m.DefaultResponse.Body) {
				delete(m.Responses, status)
			}
		}
	}

	if len(op.Extensions) > 0 {
		m.Extensions = make(map[string]any, len(op.Extensions))
		for k, v := range op.Extensions {
			m.Extensions[k] = v
		}
	}

	qname := m.QualifiedName()
	if _, dup := c.built[qname]; dup {
		return nil, &BuildError{Code: DuplicateMethodName, Method: qname, Message: "duplicate method name"}
	}

	if headers != nil {
		pending = append(pending, headers)
	}
	for _, t := range pending {
		c.registry.Register(t)
		c.code.AddType(t)
	}
	c.built[qname] = struct{}{}
	c.code.AddMethod(m)
	return m, nil
}

// notePending records a type for deferred registration when it is a composite
// not yet known to the registry. Nested composites (collection elements,
// property types) are walked too.
func (c *Context) notePending(pending *[]model.ModelType, t model.ModelType) {
	switch x := t.(type) {
	case *model.Collection:
		c.notePending(pending, x.Element)
	case *model.Composite:
		if x.Name == "" {
			return
		}
		if _, exists := c.registry.Lookup(x.Name); exists {
			return
		}
		for _, p := range *pending {
			if p.TypeName() == x.Name {
				return
			}
		}
		*pending = append(*pending, x)
		for _, prop := range x.Properties {
			c.notePending(pending, prop.Type)
		}
	}
}
