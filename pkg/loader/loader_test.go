package loader

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/model"
)

const petsJSON = `{
  "id": "pets",
  "title": "Pets",
  "sections": [{
    "questions": [
      {"id": "hasPet", "type": "Radio", "label": "Pet?", "value": "yes",
       "options": [{"label": "Yes", "value": "yes"}, {"label": "No", "value": "no"}]},
      {"id": "petName", "type": "Text",
       "dependencies": [{"sourceQuestionId": "hasPet", "triggerValue": "yes", "action": "Show"}]}
    ]
  }]
}`

const contactYAML = `
id: contact
method: PUT
sections:
  - title: Contact
    questions:
      - id: email
        type: Email
        validationRules:
          - type: MaxLength
            max: 64
            errorMessages:
              default: Too long
      - id: topics
        type: Checkbox
        value: [news, offers]
        options:
          - {label: News, value: news}
          - {label: Offers, value: offers}
`

func TestParseJSON(t *testing.T) {
	def, err := Parse("pets.json", []byte(petsJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	questions := def.Sections[0].Questions
	if diff := cmp.Diff(model.Values{"yes"}, questions[0].Value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	want := []model.QuestionDependency{{SourceQuestionID: "hasPet", TriggerValue: "yes", Action: model.ActionShow}}
	if diff := cmp.Diff(want, questions[1].Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAML(t *testing.T) {
	def, err := Parse("contact.yaml", []byte(contactYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.ID != "contact" || def.Method != "PUT" {
		t.Fatalf("unexpected form header %+v", def)
	}
	email := def.Sections[0].Questions[0]
	want := []model.ValidationRule{{
		Type:          model.RuleMaxLength,
		Max:           model.Float(64),
		ErrorMessages: map[string]string{"default": "Too long"},
	}}
	if diff := cmp.Diff(want, email.ValidationRules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.Values{"news", "offers"}, def.Sections[0].Questions[1].Value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsEmptyAndMalformed(t *testing.T) {
	if _, err := Parse("empty.json", []byte("  \n")); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty error, got %v", err)
	}
	_, err := Parse("broken.json", []byte(`{"id": "x", "sections": 4}`))
	if err == nil || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("expected parse error naming the file, got %v", err)
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{
		"forms/pets.json":     {Data: []byte(petsJSON)},
		"forms/contact.yml":   {Data: []byte(contactYAML)},
		"forms/README.md":     {Data: []byte("# not a form")},
		"forms/nested/x.yaml": {Data: []byte("id: nested\nsections: []\n")},
	}
	store, err := LoadFS(files)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if diff := cmp.Diff([]string{"contact", "nested", "pets"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	def, ok := store.Form("pets")
	if !ok || def.Title != "Pets" {
		t.Fatalf("expected pets form, got %+v (%v)", def, ok)
	}
	if store.Source("nested") != "forms/nested/x.yaml" {
		t.Fatalf("unexpected source %q", store.Source("nested"))
	}
	if _, ok := store.Form("missing"); ok {
		t.Fatalf("expected missing form")
	}
}

func TestLoadFSRejectsDuplicates(t *testing.T) {
	files := fstest.MapFS{
		"a.json": {Data: []byte(`{"id": "dup", "sections": []}`)},
		"b.yaml": {Data: []byte("id: dup\nsections: []\n")},
	}
	_, err := LoadFS(files)
	if err == nil || !strings.Contains(err.Error(), `duplicate form "dup"`) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLoadFSRejectsMissingID(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"a.yaml": {Data: []byte("title: nameless\n")}})
	if err == nil || !strings.Contains(err.Error(), "empty form id") {
		t.Fatalf("expected empty id error, got %v", err)
	}
}

func TestNilStore(t *testing.T) {
	store, err := LoadFS(nil)
	if err != nil || !store.Empty() {
		t.Fatalf("expected empty store, got %v", err)
	}
	var none *Store
	if _, ok := none.Form("x"); ok || none.IDs() != nil || !none.Empty() {
		t.Fatalf("nil store should behave as empty")
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(model.FormDefinition{ID: "a"}, model.FormDefinition{ID: "b"})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if _, err := NewStore(model.FormDefinition{ID: "a"}, model.FormDefinition{ID: "a"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}
