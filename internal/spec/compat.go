package spec

import (
    "strings"

    "gopkg.in/yaml.v3"
)

// preprocessDocument rewrites non-compliant Swagger v2 operations before the
// document is unmarshalled. The compiler assumes at most one meaningful body
// parameter per operation, so:
// - multiple body parameters are merged into a single body parameter whose
//   schema is an object with one property per original parameter;
// - operations mixing body and formData parameters have their body parameters
//   converted to formData equivalents, with multipart/form-data added to the
//   operation's consumes list.
//
// It returns possibly-modified YAML bytes and a flag indicating whether
// modifications were made. On error the original bytes are returned unchanged.
func preprocessDocument(data []byte) ([]byte, bool, error) {
    var doc map[string]any
    if err := yaml.Unmarshal(data, &doc); err != nil {
        return data, false, err
    }
    paths, ok := doc["paths"].(map[string]any)
    if !ok || len(paths) == 0 {
        return data, false, nil
    }
    modified := false

    for _, pim := range paths {
        pi, ok := pim.(map[string]any)
        if !ok { continue }
        for method, opm := range pi {
            switch strings.ToLower(method) {
            case "get", "post", "put", "delete", "patch", "options", "head":
            default:
                continue
            }
            op, ok := opm.(map[string]any)
            if !ok { continue }
            params, ok := op["parameters"].([]any)
            if !ok || len(params) == 0 { continue }

            bodyCount := 0
            hasFormData := false
            for _, p := range params {
                pm, _ := p.(map[string]any)
                if pm == nil { continue }
                switch {
                case strings.EqualFold(rawString(pm["in"]), InBody):
                    bodyCount++
                case strings.EqualFold(rawString(pm["in"]), InFormData):
                    hasFormData = true
                }
            }
            if bodyCount == 0 { continue }

            if hasFormData {
                newParams := make([]any, 0, len(params))
                for _, p := range params {
                    pm, _ := p.(map[string]any)
                    if pm == nil { continue }
                    if strings.EqualFold(rawString(pm["in"]), InBody) {
                        newParams = append(newParams, formDataFromBodyParam(pm))
                        modified = true
                        continue
                    }
                    newParams = append(newParams, pm)
                }
                op["parameters"] = newParams
                var consumes []any
                if c, ok := op["consumes"].([]any); ok {
                    consumes = c
                }
                if !rawContains(consumes, "multipart/form-data") {
                    op["consumes"] = append(consumes, "multipart/form-data")
                }
                continue
            }

            if bodyCount > 1 {
                props := map[string]any{}
                required := make([]any, 0)
                newParams := make([]any, 0, len(params))
                for _, p := range params {
                    pm, _ := p.(map[string]any)
                    if pm == nil { continue }
                    if strings.EqualFold(rawString(pm["in"]), InBody) {
                        name := rawString(pm["name"])
                        if name == "" { name = "field" }
                        schema := rawParamSchema(pm)
                        if schema == nil { schema = map[string]any{"type": "string"} }
                        props[name] = schema
                        if rb, _ := pm["required"].(bool); rb {
                            required = append(required, name)
                        }
                        modified = true
                        continue
                    }
                    newParams = append(newParams, p)
                }
                bodySchema := map[string]any{"type": "object", "properties": props}
                if len(required) > 0 { bodySchema["required"] = required }
                merged := map[string]any{
                    "in":     InBody,
                    "name":   "body",
                    "schema": bodySchema,
                }
                op["parameters"] = append([]any{merged}, newParams...)
            }
        }
    }

    if !modified {
        return data, false, nil
    }
    out, err := yaml.Marshal(doc)
    if err != nil {
        return data, false, err
    }
    return out, true, nil
}

func rawString(v any) string {
    if s, ok := v.(string); ok { return s }
    return ""
}

func rawContains(list []any, want string) bool {
    for _, v := range list {
        if s, ok := v.(string); ok && s == want { return true }
    }
    return false
}

// rawParamSchema extracts the schema of a body parameter, synthesizing one
// from type/items/format for simple parameters.
func rawParamSchema(pm map[string]any) map[string]any {
    if sch, ok := pm["schema"].(map[string]any); ok {
        return sch
    }
    t, _ := pm["type"].(string)
    if t == "" { return nil }
    m := map[string]any{"type": t}
    if it, ok := pm["items"].(map[string]any); ok {
        m["items"] = it
    }
    if f, ok := pm["format"].(string); ok && f != "" {
        m["format"] = f
    }
    return m
}

func formDataFromBodyParam(pm map[string]any) map[string]any {
    name := rawString(pm["name"])
    if name == "" { name = "field" }
    out := map[string]any{
        "in":   InFormData,
        "name": name,
    }
    if desc, ok := pm["description"].(string); ok && desc != "" {
        out["description"] = desc
    }
    if req, ok := pm["required"].(bool); ok {
        out["required"] = req
    }
    var typ, format string
    var items any
    if sch, ok := pm["schema"].(map[string]any); ok {
        if t, ok := sch["type"].(string); ok { typ = t }
        if it, ok := sch["items"].(map[string]any); ok { items = it }
        if f, ok := sch["format"].(string); ok { format = f }
        if typ == "" && sch["$ref"] != nil {
            // A referenced object cannot be represented in formData; degrade
            // to string.
            typ = "string"
        }
    }
    if typ == "" {
        if t, ok := pm["type"].(string); ok { typ = t }
        if it, ok := pm["items"].(map[string]any); ok { items = it }
        if f, ok := pm["format"].(string); ok { format = f }
    }
    if typ == "" { typ = "string" }
    out["type"] = typ
    if items != nil { out["items"] = items }
    if format != "" { out["format"] = format }
    return out
}
