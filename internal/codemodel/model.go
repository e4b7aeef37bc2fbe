// Package codemodel collects compiled methods and synthesized types for
// downstream emission.
package codemodel

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2client/internal/model"
)

// Model is the shared output of a compilation run. Methods and types appear
// in build order.
type Model struct {
	Methods []*model.Method
	Types   []model.ModelType

	typeIndex map[string]struct{}
}

func New() *Model {
	return &Model{typeIndex: make(map[string]struct{})}
}

// AddMethod appends a compiled method.
func (m *Model) AddMethod(meth *model.Method) {
	m.Methods = append(m.Methods, meth)
}

// AddType records a synthesized type once per name.
func (m *Model) AddType(t model.ModelType) {
	name := t.TypeName()
	if name == "" {
		return
	}
	if _, seen := m.typeIndex[name]; seen {
		return
	}
	m.typeIndex[name] = struct{}{}
	m.Types = append(m.Types, t)
}

type yamlModel struct {
	Methods []yamlMethod `yaml:"methods"`
	Types   []yamlType   `yaml:"types,omitempty"`
}

type yamlMethod struct {
	Group           string                  `yaml:"group,omitempty"`
	Name            string                  `yaml:"name"`
	HTTPMethod      string                  `yaml:"httpMethod"`
	URL             string                  `yaml:"url"`
	ContentType     string                  `yaml:"requestContentType,omitempty"`
	Deprecated      bool                    `yaml:"deprecated,omitempty"`
	Parameters      []yamlParameter         `yaml:"parameters,omitempty"`
	RequestHeaders  map[string]string       `yaml:"requestHeaders,omitempty"`
	Responses       map[string]yamlResponse `yaml:"responses,omitempty"`
	DefaultResponse *yamlResponse           `yaml:"defaultResponse,omitempty"`
	ReturnType      yamlResponse            `yaml:"returnType"`
	Extensions      map[string]any          `yaml:"extensions,omitempty"`
}

type yamlParameter struct {
	Name             string `yaml:"name"`
	In               string `yaml:"in"`
	Required         bool   `yaml:"required,omitempty"`
	CollectionFormat string `yaml:"collectionFormat,omitempty"`
	Type             string `yaml:"type"`
}

type yamlResponse struct {
	Body    string `yaml:"body,omitempty"`
	Headers string `yaml:"headers,omitempty"`
}

type yamlType struct {
	Name       string            `yaml:"name"`
	Base       string            `yaml:"base,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// WriteYAML dumps the model in a stable, emission-ready form.
func (m *Model) WriteYAML(w io.Writer) error {
	doc := yamlModel{}
	for _, meth := range m.Methods {
		ym := yamlMethod{
			Group:          meth.Group,
			Name:           meth.Name,
			HTTPMethod:     meth.HTTPMethod,
			URL:            meth.URLTemplate,
			ContentType:    meth.RequestContentType,
			Deprecated:     meth.Deprecated,
			RequestHeaders: meth.RequestHeaders,
			Extensions:     meth.Extensions,
			ReturnType:     yamlResponse{Body: typeName(meth.ReturnType.Body), Headers: typeName(meth.ReturnType.Headers)},
		}
		for _, p := range meth.Parameters {
			ym.Parameters = append(ym.Parameters, yamlParameter{
				Name:             p.Name,
				In:               p.In,
				Required:         p.Required,
				CollectionFormat: p.CollectionFormat,
				Type:             typeName(p.Type),
			})
		}
		if len(meth.Responses) > 0 {
			ym.Responses = make(map[string]yamlResponse, len(meth.Responses))
			for status, r := range meth.Responses {
				ym.Responses[status] = yamlResponse{Body: typeName(r.Body), Headers: typeName(r.Headers)}
			}
		}
		if meth.DefaultResponse != nil {
			ym.DefaultResponse = &yamlResponse{
				Body:    typeName(meth.DefaultResponse.Body),
				Headers: typeName(meth.DefaultResponse.Headers),
			}
		}
		doc.Methods = append(doc.Methods, ym)
	}
	for _, t := range m.Types {
		yt := yamlType{Name: t.TypeName()}
		if comp, ok := t.(*model.Composite); ok {
			yt.Base = comp.BaseType
			if len(comp.Properties) > 0 {
				yt.Properties = make(map[string]string, len(comp.Properties))
				for _, p := range comp.Properties {
					yt.Properties[p.Name] = typeName(p.Type)
				}
			}
		}
		doc.Types = append(doc.Types, yt)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode code model: %w", err)
	}
	return enc.Close()
}

func typeName(t model.ModelType) string {
	if t == nil {
		return ""
	}
	return t.TypeName()
}
