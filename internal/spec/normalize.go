package spec

import (
    "fmt"
    "sort"
    "strings"

    openapi2 "github.com/getkin/kin-openapi/openapi2"
    "github.com/getkin/kin-openapi/openapi3"
)

// BuildOption configures how the ServiceSpec is built from a document.
type BuildOption func(*buildConfig)

type buildConfig struct {
    includeTags map[string]struct{}
    excludeTags map[string]struct{}
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
    return func(c *buildConfig) {
        if len(tags) == 0 {
            return
        }
        if c.includeTags == nil {
            c.includeTags = make(map[string]struct{}, len(tags))
        }
        for _, t := range tags {
            t = strings.TrimSpace(t)
            if t == "" {
                continue
            }
            c.includeTags[t] = struct{}{}
        }
    }
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
    return func(c *buildConfig) {
        if len(tags) == 0 {
            return
        }
        if c.excludeTags == nil {
            c.excludeTags = make(map[string]struct{}, len(tags))
        }
        for _, t := range tags {
            t = strings.TrimSpace(t)
            if t == "" {
                continue
            }
            c.excludeTags[t] = struct{}{}
        }
    }
}

// BuildServiceSpec converts a Swagger v2 document into the normalized
// ServiceSpec consumed by the compiler. Paths and definitions are walked in
// sorted order so the result is deterministic.
func BuildServiceSpec(doc *openapi2.T, opts ...BuildOption) (*ServiceSpec, error) {
    if doc == nil {
        return nil, fmt.Errorf("nil document")
    }

    cfg := &buildConfig{}
    for _, opt := range opts {
        opt(cfg)
    }

    svc := &ServiceSpec{
        Title:           safeStr(doc.Info.Title),
        Version:         safeStr(doc.Info.Version),
        Description:     safeStr(doc.Info.Description),
        DefaultProduces: append([]string(nil), doc.Produces...),
        DefaultConsumes: append([]string(nil), doc.Consumes...),
    }

    if len(doc.Definitions) > 0 {
        svc.Definitions = make(map[string]Schema, len(doc.Definitions))
        names := make([]string, 0, len(doc.Definitions))
        for name := range doc.Definitions {
            names = append(names, name)
        }
        sort.Strings(names)
        for _, name := range names {
            ref := doc.Definitions[name]
            sor := toSchemaOrRef(ref)
            if sor == nil {
                continue
            }
            if sor.Ref != nil {
                // Top-level alias of another definition; keep just the name.
                svc.Definitions[name] = Schema{Name: name}
                continue
            }
            schema := *sor.Schema
            schema.Name = name
            svc.Definitions[name] = schema
        }
    }

    pathKeys := make([]string, 0, len(doc.Paths))
    for p := range doc.Paths {
        pathKeys = append(pathKeys, p)
    }
    sort.Strings(pathKeys)

    for _, p := range pathKeys {
        item := doc.Paths[p]
        if item == nil {
            continue
        }
        baseParams := make(map[string]*ParameterSpec)
        for _, pp := range item.Parameters {
            ps := toParameterSpec(pp)
            if ps == nil {
                continue
            }
            baseParams[paramKey(ps.In, ps.Name)] = ps
        }

        ops := []struct {
            m HttpMethod
            o *openapi2.Operation
        }{
            {GET, item.Get},
            {POST, item.Post},
            {PUT, item.Put},
            {DELETE, item.Delete},
            {PATCH, item.Patch},
            {HEAD, item.Head},
            {OPTIONS, item.Options},
        }

        for _, pair := range ops {
            if pair.o == nil {
                continue
            }
            tags := make([]string, 0, len(pair.o.Tags))
            for _, t := range pair.o.Tags {
                if t = strings.TrimSpace(t); t != "" {
                    tags = append(tags, t)
                }
            }
            if !allowByTags(tags, cfg) {
                continue
            }

            // Merge parameters with precedence to operation-level ones, then
            // materialize in a stable order.
            merged := make(map[string]*ParameterSpec, len(baseParams))
            order := make([]string, 0, len(baseParams))
            for k, v := range baseParams {
                merged[k] = v
            }
            for _, pp := range pair.o.Parameters {
                ps := toParameterSpec(pp)
                if ps == nil {
                    continue
                }
                merged[paramKey(ps.In, ps.Name)] = ps
            }
            for k := range merged {
                order = append(order, k)
            }
            sort.Strings(order)
            params := make([]ParameterSpec, 0, len(order))
            for _, k := range order {
                params = append(params, *merged[k])
            }

            responses := make(map[string]ResponseSpec, len(pair.o.Responses))
            for code, rr := range pair.o.Responses {
                if rr == nil {
                    continue
                }
                responses[code] = toResponseSpec(rr)
            }

            group, name := operationNames(pair.o, pair.m, p, tags)
            op := OperationSpec{
                ID:          string(pair.m) + " " + p,
                Group:       group,
                Name:        name,
                Method:      pair.m,
                Path:        p,
                Summary:     safeStr(pair.o.Summary),
                Description: safeStr(pair.o.Description),
                Deprecated:  pair.o.Deprecated,
                Tags:        tags,
                Parameters:  params,
                Responses:   responses,
                Produces:    append([]string(nil), pair.o.Produces...),
                Consumes:    append([]string(nil), pair.o.Consumes...),
            }
            if len(pair.o.Extensions) > 0 {
                op.Extensions = make(map[string]any, len(pair.o.Extensions))
                for k, v := range pair.o.Extensions {
                    op.Extensions[k] = v
                }
            }
            svc.Operations = append(svc.Operations, op)
        }
    }

    return svc, nil
}

// operationNames derives the owning group and method name. An operationId of
// the form "Group_Name" wins; otherwise the first tag becomes the group and
// the name falls back to a verb+path synthesis.
func operationNames(op *openapi2.Operation, method HttpMethod, path string, tags []string) (string, string) {
    group := ""
    if len(tags) > 0 {
        group = tags[0]
    }
    id := safeStr(op.OperationID)
    if id != "" {
        if i := strings.Index(id, "_"); i > 0 && i < len(id)-1 {
            return id[:i], id[i+1:]
        }
        return group, id
    }
    return group, methodNameFromPath(method, path)
}

func methodNameFromPath(method HttpMethod, path string) string {
    var b strings.Builder
    b.WriteString(string(method))
    for _, seg := range strings.Split(path, "/") {
        if seg == "" {
            continue
        }
        if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
            b.WriteString("By")
            b.WriteString(Pascal(strings.Trim(seg, "{}")))
            continue
        }
        b.WriteString(Pascal(seg))
    }
    return b.String()
}

// Pascal upper-camels a name, splitting on common separators.
func Pascal(s string) string {
    parts := strings.FieldsFunc(s, func(r rune) bool {
        return r == '-' || r == '_' || r == '.' || r == ' '
    })
    var b strings.Builder
    for _, part := range parts {
        b.WriteString(strings.ToUpper(part[:1]))
        b.WriteString(part[1:])
    }
    return b.String()
}

func allowByTags(tags []string, cfg *buildConfig) bool {
    if len(cfg.includeTags) > 0 {
        ok := false
        for _, t := range tags {
            if _, yes := cfg.includeTags[t]; yes {
                ok = true
                break
            }
        }
        if !ok {
            return false
        }
    }
    if len(cfg.excludeTags) > 0 {
        for _, t := range tags {
            if _, blocked := cfg.excludeTags[t]; blocked {
                return false
            }
        }
    }
    return true
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func toParameterSpec(p *openapi2.Parameter) *ParameterSpec {
    if p == nil {
        return nil
    }
    ps := &ParameterSpec{
        Name:             safeStr(p.Name),
        In:               safeStr(p.In),
        Required:         p.Required,
        CollectionFormat: safeStr(p.CollectionFormat),
    }
    if p.Schema != nil {
        ps.Schema = toSchemaOrRef(p.Schema)
    } else {
        ps.Schema = simpleParamSchema(p.Type, p.Format, p.Items, p.Enum)
    }
    return ps
}

func toResponseSpec(r *openapi2.Response) ResponseSpec {
    rs := ResponseSpec{Description: safeStr(r.Description)}
    if r.Schema != nil {
        rs.Schema = toSchemaOrRef(r.Schema)
    }
    if len(r.Headers) > 0 {
        rs.Headers = make(map[string]*SchemaOrRef, len(r.Headers))
        for name, h := range r.Headers {
            if h == nil {
                continue
            }
            if h.Schema != nil {
                rs.Headers[name] = toSchemaOrRef(h.Schema)
            } else {
                rs.Headers[name] = simpleParamSchema(h.Type, h.Format, h.Items, h.Enum)
            }
        }
    }
    return rs
}

// simpleParamSchema synthesizes a schema for simple (non-body) parameters and
// headers, which carry type/format/items directly instead of a schema object.
func simpleParamSchema(typ, format string, items *openapi3.SchemaRef, enum []any) *SchemaOrRef {
    if typ == "" {
        typ = "string"
    }
    s := &Schema{Type: typ, Format: safeStr(format)}
    if items != nil {
        s.Items = toSchemaOrRef(items)
    }
    if len(enum) > 0 {
        s.Enum = append([]any(nil), enum...)
    }
    return &SchemaOrRef{Schema: s}
}

func toSchemaOrRef(ref *openapi3.SchemaRef) *SchemaOrRef {
    if ref == nil {
        return nil
    }
    if ref.Ref != "" {
        return &SchemaOrRef{Ref: &SchemaRef{Ref: ref.Ref}}
    }
    if ref.Value == nil {
        return &SchemaOrRef{Schema: &Schema{Type: "object"}}
    }
    s := &Schema{
        Type:        safeStr(ref.Value.Type),
        Description: safeStr(ref.Value.Description),
        Format:      safeStr(ref.Value.Format),
        Example:     ref.Value.Example,
        Required:    append([]string(nil), ref.Value.Required...),
    }
    if len(ref.Value.Enum) > 0 {
        s.Enum = append([]any(nil), ref.Value.Enum...)
    }
    if ref.Value.Items != nil {
        s.Items = toSchemaOrRef(ref.Value.Items)
    }
    if len(ref.Value.Properties) > 0 {
        s.Properties = make(map[string]*SchemaOrRef, len(ref.Value.Properties))
        for name, prop := range ref.Value.Properties {
            s.Properties[name] = toSchemaOrRef(prop)
        }
    }
    for _, r := range ref.Value.AllOf {
        s.AllOf = append(s.AllOf, toSchemaOrRef(r))
    }
    return &SchemaOrRef{Schema: s}
}
