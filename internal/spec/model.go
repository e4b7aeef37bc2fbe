package spec

import "strings"

// Normalized operation descriptions consumed by the method compiler.

type HttpMethod string

const (
    GET     HttpMethod = "get"
    POST    HttpMethod = "post"
    PUT     HttpMethod = "put"
    DELETE  HttpMethod = "delete"
    PATCH   HttpMethod = "patch"
    HEAD    HttpMethod = "head"
    OPTIONS HttpMethod = "options"
)

// Parameter locations.
const (
    InPath     = "path"
    InQuery    = "query"
    InHeader   = "header"
    InBody     = "body"
    InFormData = "formData"
)

// DefaultResponseKey is the distinguished response entry used for error
// signaling, as opposed to numbered status codes.
const DefaultResponseKey = "default"

// ServiceSpec is the normalized view of a whole document: service-wide MIME
// defaults, named schema definitions, and the operations to compile.
type ServiceSpec struct {
    Title           string
    Version         string
    Description     string
    DefaultProduces []string
    DefaultConsumes []string
    Definitions     map[string]Schema // by definition name
    Operations      []OperationSpec
}

// OperationSpec describes one callable API action. It is read-only input for
// a single compiler build call.
type OperationSpec struct {
    ID          string // method+path
    Group       string
    Name        string
    Method      HttpMethod
    Path        string
    Summary     string
    Description string
    Deprecated  bool
    Tags        []string
    Parameters  []ParameterSpec
    Responses   map[string]ResponseSpec // status code or "default"
    Produces    []string
    Consumes    []string
    Extensions  map[string]any
}

type ParameterSpec struct {
    Name             string
    In               string // path|query|header|body|formData
    Required         bool
    CollectionFormat string // csv|ssv|tsv|pipes|multi, arrays only
    Schema           *SchemaOrRef
}

// ResponseSpec describes one declared response. An absent schema means an
// empty body.
type ResponseSpec struct {
    Description string
    Schema      *SchemaOrRef
    Headers     map[string]*SchemaOrRef
}

type Schema struct {
    Name        string
    Type        string
    Format      string
    Description string
    Properties  map[string]*SchemaOrRef
    Required    []string
    Items       *SchemaOrRef
    AllOf       []*SchemaOrRef
    Enum        []any
    Example     any
}

type SchemaRef struct{ Ref string }

type SchemaOrRef struct {
    Schema *Schema
    Ref    *SchemaRef
}

// Name returns the final path segment of the reference, which is the
// definition name for both "#/definitions/X" and "#/components/schemas/X".
func (r *SchemaRef) Name() string {
    if r == nil {
        return ""
    }
    if i := strings.LastIndex(r.Ref, "/"); i >= 0 {
        return r.Ref[i+1:]
    }
    return r.Ref
}

// RefName returns the referenced definition name, or "" for inline schemas.
func (s *SchemaOrRef) RefName() string {
    if s == nil || s.Ref == nil {
        return ""
    }
    return s.Ref.Name()
}
