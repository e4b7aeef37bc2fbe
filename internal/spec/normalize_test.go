package spec

import (
    "testing"

    openapi2 "github.com/getkin/kin-openapi/openapi2"
    "github.com/getkin/kin-openapi/openapi3"
)

func sampleDoc() *openapi2.T {
    pet := &openapi3.Schema{
        Type: "object",
        Properties: map[string]*openapi3.SchemaRef{
            "id":   {Value: &openapi3.Schema{Type: "integer", Format: "int64"}},
            "name": {Value: &openapi3.Schema{Type: "string"}},
        },
        Required: []string{"id", "name"},
    }
    apiErr := &openapi3.Schema{
        Type: "object",
        Properties: map[string]*openapi3.SchemaRef{
            "code":    {Value: &openapi3.Schema{Type: "integer"}},
            "message": {Value: &openapi3.Schema{Type: "string"}},
        },
    }

    return &openapi2.T{
        Swagger:  "2.0",
        Info:     openapi3.Info{Title: "Pet Store", Version: "1.0.0", Description: "Demo"},
        Produces: []string{"application/json"},
        Consumes: []string{"application/json"},
        Definitions: map[string]*openapi3.SchemaRef{
            "Pet":   {Value: pet},
            "Error": {Value: apiErr},
        },
        Paths: map[string]*openapi2.PathItem{
            "/pets": {
                Parameters: []*openapi2.Parameter{
                    {In: "query", Name: "limit", Type: "integer"},
                },
                Get: &openapi2.Operation{
                    OperationID: "Pets_List",
                    Summary:     "List pets",
                    Tags:        []string{"pets"},
                    Parameters: []*openapi2.Parameter{
                        {In: "query", Name: "limit", Required: true, Type: "integer"},
                    },
                    Responses: map[string]*openapi2.Response{
                        "200": {
                            Description: "ok",
                            Schema: &openapi3.SchemaRef{Value: &openapi3.Schema{
                                Type:  "array",
                                Items: &openapi3.SchemaRef{Ref: "#/definitions/Pet"},
                            }},
                        },
                    },
                },
                Post: &openapi2.Operation{
                    Summary: "Create pet",
                    Tags:    []string{"pets", "write"},
                    Parameters: []*openapi2.Parameter{
                        {In: "body", Name: "pet", Required: true, Schema: &openapi3.SchemaRef{Ref: "#/definitions/Pet"}},
                    },
                    Responses: map[string]*openapi2.Response{
                        "201": {Description: "created"},
                    },
                },
            },
            "/pets/{petId}": {
                Parameters: []*openapi2.Parameter{
                    {In: "path", Name: "petId", Required: true, Type: "string"},
                },
                Get: &openapi2.Operation{
                    Responses: map[string]*openapi2.Response{
                        "200": {
                            Description: "ok",
                            Schema:      &openapi3.SchemaRef{Ref: "#/definitions/Pet"},
                            Headers: map[string]*openapi2.Header{
                                "X-Request-Id": {Parameter: openapi2.Parameter{Type: "string"}},
                            },
                        },
                        "default": {
                            Description: "error",
                            Schema:      &openapi3.SchemaRef{Ref: "#/definitions/Error"},
                        },
                    },
                },
            },
        },
    }
}

func TestBuildServiceSpecBasic(t *testing.T) {
    t.Parallel()

    svc, err := BuildServiceSpec(sampleDoc())
    if err != nil {
        t.Fatalf("build: %v", err)
    }

    if svc.Title != "Pet Store" {
        t.Errorf("title: got %q", svc.Title)
    }
    if len(svc.DefaultProduces) != 1 || svc.DefaultProduces[0] != "application/json" {
        t.Errorf("default produces: got %v", svc.DefaultProduces)
    }

    pet, ok := svc.Definitions["Pet"]
    if !ok {
        t.Fatalf("definitions: missing Pet")
    }
    if pet.Name != "Pet" || pet.Type != "object" {
        t.Errorf("Pet: got %+v", pet)
    }
    if _, ok := pet.Properties["id"]; !ok {
        t.Errorf("Pet.properties: missing id")
    }
    if len(pet.Required) != 2 {
        t.Errorf("Pet.required: got %v", pet.Required)
    }

    if len(svc.Operations) != 3 {
        t.Fatalf("operations: got %d", len(svc.Operations))
    }
}

func TestBuildServiceSpecOperationNames(t *testing.T) {
    t.Parallel()

    svc, err := BuildServiceSpec(sampleDoc())
    if err != nil {
        t.Fatalf("build: %v", err)
    }

    // Paths sorted, then the fixed method order within each path.
    byID := make(map[string]OperationSpec, len(svc.Operations))
    for _, op := range svc.Operations {
        byID[op.ID] = op
    }

    list := byID["get /pets"]
    if list.Group != "Pets" || list.Name != "List" {
        t.Errorf("operationId split: got %q.%q", list.Group, list.Name)
    }

    create := byID["post /pets"]
    if create.Group != "pets" || create.Name != "postPets" {
        t.Errorf("tag group + path synthesis: got %q.%q", create.Group, create.Name)
    }

    show := byID["get /pets/{petId}"]
    if show.Group != "" || show.Name != "getPetsByPetId" {
        t.Errorf("path synthesis: got %q.%q", show.Group, show.Name)
    }
}

func TestBuildServiceSpecParameterMerge(t *testing.T) {
    t.Parallel()

    svc, err := BuildServiceSpec(sampleDoc())
    if err != nil {
        t.Fatalf("build: %v", err)
    }

    for _, op := range svc.Operations {
        switch op.ID {
        case "get /pets":
            if len(op.Parameters) != 1 {
                t.Fatalf("get /pets parameters: got %d", len(op.Parameters))
            }
            // Operation-level declaration overrides the path-level one.
            if !op.Parameters[0].Required {
                t.Errorf("limit must be required after override")
            }
            if op.Parameters[0].Schema == nil || op.Parameters[0].Schema.Schema.Type != "integer" {
                t.Errorf("limit schema: got %+v", op.Parameters[0].Schema)
            }
        case "get /pets/{petId}":
            if len(op.Parameters) != 1 || op.Parameters[0].Name != "petId" {
                t.Fatalf("path-level parameter not inherited: %+v", op.Parameters)
            }
            if op.Parameters[0].In != InPath || !op.Parameters[0].Required {
                t.Errorf("petId: got %+v", op.Parameters[0])
            }
        }
    }
}

func TestBuildServiceSpecResponses(t *testing.T) {
    t.Parallel()

    svc, err := BuildServiceSpec(sampleDoc())
    if err != nil {
        t.Fatalf("build: %v", err)
    }

    var show OperationSpec
    for _, op := range svc.Operations {
        if op.ID == "get /pets/{petId}" {
            show = op
        }
    }

    ok := show.Responses["200"]
    if ok.Schema.RefName() != "Pet" {
        t.Errorf("200 schema: got %q", ok.Schema.RefName())
    }
    hdr, found := ok.Headers["X-Request-Id"]
    if !found || hdr.Schema == nil || hdr.Schema.Type != "string" {
        t.Errorf("200 header: got %+v", hdr)
    }

    def := show.Responses[DefaultResponseKey]
    if def.Schema.RefName() != "Error" {
        t.Errorf("default schema: got %q", def.Schema.RefName())
    }

    var list OperationSpec
    for _, op := range svc.Operations {
        if op.ID == "get /pets" {
            list = op
        }
    }
    arr := list.Responses["200"].Schema
    if arr.Schema == nil || arr.Schema.Type != "array" || arr.Schema.Items.RefName() != "Pet" {
        t.Errorf("array response: got %+v", arr)
    }
}

func TestBuildServiceSpecTagFilters(t *testing.T) {
    t.Parallel()

    svc, err := BuildServiceSpec(sampleDoc(), WithIncludeTags([]string{"pets"}))
    if err != nil {
        t.Fatalf("build: %v", err)
    }
    if len(svc.Operations) != 2 {
        t.Errorf("include filter: got %d operations", len(svc.Operations))
    }

    svc, err = BuildServiceSpec(sampleDoc(), WithExcludeTags([]string{"write"}))
    if err != nil {
        t.Fatalf("build: %v", err)
    }
    for _, op := range svc.Operations {
        if op.ID == "post /pets" {
            t.Errorf("excluded operation survived")
        }
    }
}

func TestBuildServiceSpecNilDocument(t *testing.T) {
    t.Parallel()

    if _, err := BuildServiceSpec(nil); err == nil {
        t.Fatalf("expected an error")
    }
}

func TestMethodNameFromPath(t *testing.T) {
    t.Parallel()

    cases := []struct {
        method HttpMethod
        path   string
        want   string
    }{
        {GET, "/pets", "getPets"},
        {GET, "/pets/{petId}", "getPetsByPetId"},
        {POST, "/pet-stores/{store_id}/orders", "postPetStoresByStoreIdOrders"},
        {DELETE, "/", "delete"},
    }
    for _, tc := range cases {
        if got := methodNameFromPath(tc.method, tc.path); got != tc.want {
            t.Errorf("%s %s: got %q, want %q", tc.method, tc.path, got, tc.want)
        }
    }
}

func TestPascal(t *testing.T) {
    t.Parallel()

    cases := map[string]string{
        "pet":          "Pet",
        "pet-store":    "PetStore",
        "pet_store.id": "PetStoreId",
        "X-Rate-Limit": "XRateLimit",
        "":             "",
    }
    for in, want := range cases {
        if got := Pascal(in); got != want {
            t.Errorf("Pascal(%q): got %q, want %q", in, got, want)
        }
    }
}
