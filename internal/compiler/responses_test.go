package compiler

import (
	"testing"

	"github.com/mark3labs/swagger2client/internal/model"
	"github.com/mark3labs/swagger2client/internal/spec"
)

func TestClassifyStreamBody(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	op := testOp("downloadReport", func(op *spec.OperationSpec) {
		op.Produces = []string{"application/octet-stream"}
		op.Responses["200"] = spec.ResponseSpec{Schema: ref("Download")}
	})
	m, err := c.BuildMethod("Reports", op)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	body, ok := m.Responses["200"].Body.(*model.Composite)
	if !ok || body.Name != "Download" {
		t.Fatalf("body: got %v", m.Responses["200"].Body)
	}
	if !body.HasPropertyKind(model.KindByteArray) {
		t.Errorf("stream type lost its byte-array property")
	}
	if m.ReturnType.Body.TypeName() != "Download" {
		t.Errorf("return type: got %v", m.ReturnType.Body)
	}
}

func TestClassifyStreamBodyRequiresByteArrayProperty(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	op := testOp("downloadReport", func(op *spec.OperationSpec) {
		op.Produces = []string{"application/octet-stream"}
		op.Responses["200"] = spec.ResponseSpec{Schema: ref("Listing")}
	})
	_, err := c.BuildMethod("Reports", op)
	if !HasCode(err, MissingByteArrayField) {
		t.Fatalf("expected MissingByteArrayField, got %v", err)
	}
}

func TestClassifyJSONBodyWinsOverStream(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	// Both strategies would apply; JSON has priority, so a plain composite
	// without byte-array properties is fine.
	op := testOp("listWidgets", func(op *spec.OperationSpec) {
		op.Produces = []string{"application/octet-stream", "application/json"}
		op.Responses["200"] = spec.ResponseSpec{Schema: ref("Listing")}
	})
	m, err := c.BuildMethod("Widgets", op)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := m.Responses["200"].Body.TypeName(); got != "Listing" {
		t.Errorf("body: got %q", got)
	}
}

func TestClassifyEmptyBodyWithoutSchema(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	op := testOp("deleteWidget", func(op *spec.OperationSpec) {
		op.Method = spec.DELETE
		op.Responses = map[string]spec.ResponseSpec{
			"204": {Description: "no content"},
		}
	})
	m, err := c.BuildMethod("Widgets", op)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if m.Responses["204"].Body != nil {
		t.Errorf("body: want absent, got %v", m.Responses["204"].Body)
	}
	if m.ReturnType.Body != nil {
		t.Errorf("return type: want nil, got %v", m.ReturnType.Body)
	}
}

func TestClassifyEmptyBodyWithPropertylessSchemaStaysQuiet(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	op := testOp("ping", func(op *spec.OperationSpec) {
		op.Produces = nil
		op.Responses["200"] = spec.ResponseSpec{Schema: inline(&spec.Schema{Type: "object"})}
	})
	m, err := c.BuildMethod("", op)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	prim, ok := m.Responses["200"].Body.(*model.Primitive)
	if !ok || prim.Kind != model.KindObject {
		t.Errorf("body: got %v", m.Responses["200"].Body)
	}
	// No properties would be dropped, so no warning either.
	if got := c.Warnings(); len(got) != 0 {
		t.Errorf("warnings: got %v", got)
	}
}

func TestDefaultResponseIgnoredWithoutJSON(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	op := testOp("downloadReport", func(op *spec.OperationSpec) {
		op.Produces = []string{"application/octet-stream"}
		op.Responses["200"] = spec.ResponseSpec{Schema: ref("Download")}
		op.Responses[spec.DefaultResponseKey] = spec.ResponseSpec{Schema: ref("Error")}
	})
	m, err := c.BuildMethod("Reports", op)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if m.DefaultResponse != nil {
		t.Errorf("default response: want nil, got %+v", m.DefaultResponse)
	}
}

func TestDefaultResponseDoesNotJoinUnification(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	op := testOp("listWidgets", func(op *spec.OperationSpec) {
		op.Responses[spec.DefaultResponseKey] = spec.ResponseSpec{Schema: ref("Error")}
	})
	m, err := c.BuildMethod("Widgets", op)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Only the 200 Widget feeds the return type; Error stays on the error
	// channel.
	if got := m.ReturnType.Body.TypeName(); got != "Widget" {
		t.Errorf("return type: got %q", got)
	}
	if m.DefaultResponse == nil || m.DefaultResponse.Body.TypeName() != "Error" {
		t.Errorf("default response: got %+v", m.DefaultResponse)
	}
}

func TestClassifyUnresolvedReferenceFails(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestContext(t)

	op := testOp("listWidgets", func(op *spec.OperationSpec) {
		op.Responses["200"] = spec.ResponseSpec{Schema: ref("Missing")}
	})
	if _, err := c.BuildMethod("Widgets", op); !HasCode(err, InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestResponseOrderDefaultLast(t *testing.T) {
	t.Parallel()

	responses := map[string]spec.ResponseSpec{
		"404":                   {},
		spec.DefaultResponseKey: {},
		"200":                   {},
		"201":                   {},
	}
	got := responseOrder(responses)
	want := []string{"200", "201", "404", spec.DefaultResponseKey}
	if len(got) != len(want) {
		t.Fatalf("order: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	}
}
