package model

// Emission-ready method model produced by the compiler.

// Parameter is one method parameter after deduplication and type resolution.
type Parameter struct {
	Name             string
	In               string // path|query|header|body|formData
	Required         bool
	CollectionFormat string
	Type             ModelType
}

// Response pairs an optional body type with an optional headers type. A nil
// field means "absent". Responses are immutable once constructed.
type Response struct {
	Body    ModelType
	Headers ModelType
}

// ReturnType is the unified result of all success responses of a method.
type ReturnType struct {
	Body    ModelType // nil when no success response carries a body
	Headers ModelType // nil when no response declares headers
}

// Method is the compiled representation of one operation.
type Method struct {
	Name               string
	Group              string
	HTTPMethod         string
	URLTemplate        string
	RequestContentType string
	Summary            string
	Description        string
	Deprecated         bool
	Parameters         []Parameter
	RequestHeaders     map[string]string // header name -> value pattern
	Responses          map[string]Response
	DefaultResponse    *Response // error/fallback channel
	ReturnType         ReturnType
	Extensions         map[string]any
}

// QualifiedName is the uniqueness key across all methods of a build: the
// (group, name) pair joined with a dot, or just the name when ungrouped.
func (m *Method) QualifiedName() string {
	if m.Group == "" {
		return m.Name
	}
	return m.Group + "." + m.Name
}
