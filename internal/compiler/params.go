package compiler

import (
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2client/internal/model"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// bodySuffix is appended to a body parameter's name until it no longer
// collides with any non-body parameter. Each append strictly lengthens the
// candidate name, so the loop terminates.
const bodySuffix = "Body"

// dedupeParameters resolves name collisions in declaration order and returns
// a new list; the input is not mutated.
func dedupeParameters(in []spec.ParameterSpec) []spec.ParameterSpec {
	out := append([]spec.ParameterSpec(nil), in...)
	for i := range out {
		p := &out[i]
		switch p.In {
		case spec.InBody:
			for collidesWithNonBody(out, i, p.Name) {
				p.Name += bodySuffix
			}
		case spec.InQuery:
			// A query parameter shadowing a path parameter must always be
			// sent, whatever its declared requiredness.
			if hasPathParam(out, p.Name) {
				p.Required = true
			}
		}
	}
	return out
}

func collidesWithNonBody(params []spec.ParameterSpec, self int, name string) bool {
	for i := range params {
		if i == self || params[i].In == spec.InBody {
			continue
		}
		if strings.EqualFold(params[i].Name, name) {
			return true
		}
	}
	return false
}

func hasPathParam(params []spec.ParameterSpec, name string) bool {
	for i := range params {
		if params[i].In == spec.InPath && strings.EqualFold(params[i].Name, name) {
			return true
		}
	}
	return false
}

// buildParameters resolves each deduplicated parameter to a model type and
// registers header-carried parameters into the request header template map.
func (c *Context) buildParameters(m *model.Method, params []spec.ParameterSpec, pending *[]model.ModelType) error {
	for _, ps := range dedupeParameters(params) {
		if ps.Schema == nil {
			return &BuildError{Code: InvalidInput, Method: m.QualifiedName(), Message: fmt.Sprintf("parameter %q has no schema", ps.Name)}
		}
		t, err := c.registry.Resolve(ps.Schema, m.Name+spec.Pascal(ps.Name))
		if err != nil {
			return &BuildError{Code: InvalidInput, Method: m.QualifiedName(), Message: fmt.Sprintf("parameter %q: %v", ps.Name, err), Cause: err}
		}
		c.notePending(pending, t)
		p := model.Parameter{
			Name:             ps.Name,
			In:               ps.In,
			Required:         ps.Required,
			CollectionFormat: ps.CollectionFormat,
			Type:             t,
		}
		m.Parameters = append(m.Parameters, p)
		if ps.In == spec.InHeader {
			m.RequestHeaders[ps.Name] = "{" + c.formatter.FormatParameter(p) + "}"
		}
	}
	return nil
}
