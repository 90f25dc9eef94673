package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
)

const signupDoc = `
openapi: 3.0.3
info:
  title: Accounts
  version: 1.0.0
paths:
  /accounts:
    post:
      operationId: createAccount
      summary: Create account
      description: Tell us about yourself.
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email, plan]
              x-formgen-order: [email, plan]
              properties:
                email:
                  type: string
                  format: email
                  title: Email address
                  maxLength: 64
                plan:
                  type: string
                  enum: [free, pro]
                  default: free
                bio:
                  type: string
                  x-formgen-kind: multiline
                  x-formgen-label: About you
                age:
                  type: integer
                  minimum: 18
                  maximum: 99
                newsletter:
                  type: boolean
                id:
                  type: string
                  readOnly: true
      responses:
        "201":
          description: created
  /accounts/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
`

func TestOperations(t *testing.T) {
	ops, err := Operations(context.Background(), []byte(signupDoc))
	if err != nil {
		t.Fatalf("Operations: %v", err)
	}
	if diff := cmp.Diff([]string{"createAccount", "get:/accounts/{id}"}, OperationIDs(ops)); diff != "" {
		t.Fatalf("operation ids mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, field := range ops["createAccount"].Fields {
		names = append(names, field.Metadata.Name)
	}
	if diff := cmp.Diff([]string{"email", "plan", "age", "bio", "newsletter"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	email := ops["createAccount"].Fields[0].Metadata
	maxLen := 64
	want := model.FieldMetadata{
		Name:        "email",
		Type:        model.PrimitiveString,
		Kind:        model.KindEmail,
		Required:    true,
		DisplayName: "Email address",
		MaxLength:   &maxLen,
	}
	if diff := cmp.Diff(want, email); diff != "" {
		t.Fatalf("email metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDefinitionCompiles(t *testing.T) {
	def, err := BuildDefinition(context.Background(), []byte(signupDoc), "createAccount")
	if err != nil {
		t.Fatalf("BuildDefinition: %v", err)
	}
	if def.Action != "/accounts" || def.Method != http.MethodPost || def.Title != "Create account" {
		t.Fatalf("unexpected form header %+v", def)
	}

	form, err := compiler.Compile(def)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	type summary struct {
		ID       string
		Type     model.QuestionType
		Subtype  string
		Label    string
		Required bool
		Value    []string
	}
	var got []summary
	for _, field := range form.Fields() {
		got = append(got, summary{field.ID, field.Type, field.InputSubtype, field.Label, field.Required, field.Value})
	}
	want := []summary{
		{"email", model.QuestionTypeEmail, "email", "Email address", true, nil},
		{"plan", model.QuestionTypeDropdown, "text", "plan", true, []string{"free"}},
		{"age", model.QuestionTypeNumber, "number", "age", false, nil},
		{"bio", model.QuestionTypeTextArea, "text", "About you", false, nil},
		{"newsletter", model.QuestionTypeCheckbox, "text", "newsletter", false, nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("compiled fields mismatch (-want +got):\n%s", diff)
	}

	age, _ := form.Field("age")
	rule, ok := age.Rule(model.RuleRange)
	if !ok || *rule.Min != 18 || *rule.Max != 99 {
		t.Fatalf("expected inferred range rule, got %+v", age.Rules)
	}
	plan, _ := form.Field("plan")
	if len(plan.Options) != 2 || !plan.Options[0].Selected || plan.Options[0].Key != "plan_free" {
		t.Fatalf("unexpected plan options %+v", plan.Options)
	}
}

func TestBuildDefinitionUnknownOperation(t *testing.T) {
	_, err := BuildDefinition(context.Background(), []byte(signupDoc), "deleteAccount")
	if err == nil || !strings.Contains(err.Error(), "createAccount") {
		t.Fatalf("expected error listing available operations, got %v", err)
	}
}

func TestOperationsRejectsEmpty(t *testing.T) {
	if _, err := Operations(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestReadSource(t *testing.T) {
	ctx := context.Background()

	files := fstest.MapFS{"api/doc.yaml": {Data: []byte(signupDoc)}}
	data, err := ReadSource(ctx, "api/doc.yaml", SourceOptions{FileSystem: files})
	if err != nil || string(data) != signupDoc {
		t.Fatalf("fs source: %v", err)
	}

	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte(signupDoc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSource(ctx, path, SourceOptions{}); err != nil {
		t.Fatalf("file source: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(signupDoc))
	}))
	defer srv.Close()
	if _, err := ReadSource(ctx, srv.URL, SourceOptions{}); err == nil {
		t.Fatalf("expected http to be disabled without a client")
	}
	if data, err := ReadSource(ctx, srv.URL, SourceOptions{HTTPClient: srv.Client()}); err != nil || len(data) == 0 {
		t.Fatalf("http source: %v", err)
	}
}
