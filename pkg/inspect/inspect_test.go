package inspect

import (
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/model"
)

func TestInspectWidgetPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		meta    model.FieldMetadata
		widget  model.QuestionType
		subtype string
	}{
		{"boolean beats email kind", model.FieldMetadata{Name: "agree", Type: model.PrimitiveBoolean, Kind: model.KindEmail}, model.QuestionTypeCheckbox, SubtypeEmail},
		{"boolean beats url kind", model.FieldMetadata{Name: "agree", Type: model.PrimitiveBoolean, Kind: model.KindURL}, model.QuestionTypeCheckbox, SubtypeURL},
		{"kind beats primitive", model.FieldMetadata{Name: "contact", Type: model.PrimitiveInteger, Kind: model.KindEmail}, model.QuestionTypeEmail, SubtypeEmail},
		{"numeric without kind", model.FieldMetadata{Name: "age", Type: model.PrimitiveInteger}, model.QuestionTypeNumber, SubtypeNumber},
		{"decimal without kind", model.FieldMetadata{Name: "price", Type: model.PrimitiveDecimal}, model.QuestionTypeNumber, SubtypeNumber},
		{"numeric with text kind", model.FieldMetadata{Name: "code", Type: model.PrimitiveInteger, Kind: model.KindText}, model.QuestionTypeText, SubtypeText},
		{"password", model.FieldMetadata{Name: "secret", Type: model.PrimitiveString, Kind: model.KindPassword}, model.QuestionTypePassword, SubtypePassword},
		{"multiline", model.FieldMetadata{Name: "bio", Kind: model.KindMultilineText}, model.QuestionTypeTextArea, SubtypeText},
		{"phone", model.FieldMetadata{Name: "phone", Kind: model.KindPhoneNumber}, model.QuestionTypeText, SubtypeText},
		{"date primitive", model.FieldMetadata{Name: "dob", Type: model.PrimitiveDate}, model.QuestionTypeDate, SubtypeText},
		{"file primitive", model.FieldMetadata{Name: "cv", Type: model.PrimitiveFile}, model.QuestionTypeFileUpload, SubtypeText},
		{"unknown kind degrades", model.FieldMetadata{Name: "x", Type: model.PrimitiveDecimal, Kind: "Colour"}, model.QuestionTypeNumber, SubtypeNumber},
		{"no metadata", model.FieldMetadata{Name: "plain"}, model.QuestionTypeText, SubtypeText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Inspect(tc.meta)
			if got.WidgetKind != tc.widget {
				t.Fatalf("widget: want %s, got %s", tc.widget, got.WidgetKind)
			}
			if got.InputSubtype != tc.subtype {
				t.Fatalf("subtype: want %s, got %s", tc.subtype, got.InputSubtype)
			}
		})
	}
}

func TestInspectLabelAndHintDefaults(t *testing.T) {
	got := Inspect(model.FieldMetadata{Name: "firstName"})
	if got.Label != "firstName" {
		t.Fatalf("expected identifier verbatim as label, got %q", got.Label)
	}
	if got.Hint != "" {
		t.Fatalf("expected empty hint, got %q", got.Hint)
	}

	got = Inspect(model.FieldMetadata{Name: "firstName", DisplayName: "First name", Description: "As on your passport", Required: true})
	if got.Label != "First name" || got.Hint != "As on your passport" || !got.InferredRequired {
		t.Fatalf("unexpected descriptor %#v", got)
	}
}

func TestInspectIsDeterministic(t *testing.T) {
	minLen := 2
	meta := model.FieldMetadata{Name: "n", Type: model.PrimitiveString, Kind: model.KindEmail, MinLength: &minLen}
	if diff := cmp.Diff(Inspect(meta), Inspect(meta)); diff != "" {
		t.Fatalf("descriptor not deterministic:\n%s", diff)
	}
}

func TestInspectConstraints(t *testing.T) {
	minLen, maxLen := 3, 12
	meta := model.FieldMetadata{
		Name:      "handle",
		Kind:      model.KindEmail,
		MinLength: &minLen,
		MaxLength: &maxLen,
		Pattern:   "^[a-z]+$",
		Min:       model.Float(1),
		Max:       model.Float(9),
	}
	want := []model.ValidationRule{
		{Type: model.RuleEmail},
		{Type: model.RuleMinLength, Min: model.Float(3)},
		{Type: model.RuleMaxLength, Max: model.Float(12)},
		{Type: model.RulePattern, Pattern: "^[a-z]+$"},
		{Type: model.RuleRange, Min: model.Float(1), Max: model.Float(9)},
	}
	if diff := cmp.Diff(want, Inspect(meta).Constraints); diff != "" {
		t.Fatalf("constraints mismatch (-want +got):\n%s", diff)
	}

	if got := Inspect(model.FieldMetadata{Name: "ok", Type: model.PrimitiveBoolean, Kind: model.KindEmail}).Constraints; got != nil {
		t.Fatalf("expected no constraints for boolean, got %#v", got)
	}
}

type signup struct {
	Email    string                `json:"email" form:",required,kind=email" label:"E-mail"`
	Age      int                   `form:"age,min=18,max=120"`
	Bio      string                `form:"bio,kind=multiline,maxlen=280" hint:"Tell us about you"`
	Agree    bool                  `form:"agree,required"`
	Born     *time.Time            `form:"born"`
	Resume   *multipart.FileHeader `form:"resume"`
	Handle   string                `form:"handle,minlen=2" pattern:"^[a-z]+$"`
	Internal string                `form:"-"`
	hidden   string
}

func TestFromStruct(t *testing.T) {
	metas, err := FromStruct(&signup{})
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}

	two, twoEighty := 2, 280
	want := []model.FieldMetadata{
		{Name: "email", Type: model.PrimitiveString, Kind: model.KindEmail, Required: true, DisplayName: "E-mail"},
		{Name: "age", Type: model.PrimitiveInteger, Min: model.Float(18), Max: model.Float(120)},
		{Name: "bio", Type: model.PrimitiveString, Kind: model.KindMultilineText, MaxLength: &twoEighty, Description: "Tell us about you"},
		{Name: "agree", Type: model.PrimitiveBoolean, Required: true},
		{Name: "born", Type: model.PrimitiveDate},
		{Name: "resume", Type: model.PrimitiveFile},
		{Name: "handle", Type: model.PrimitiveString, MinLength: &two, Pattern: "^[a-z]+$"},
	}
	if diff := cmp.Diff(want, metas); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestFromStructErrors(t *testing.T) {
	if _, err := FromStruct(nil); err == nil {
		t.Fatalf("expected error for nil")
	}
	if _, err := FromStruct(42); err == nil {
		t.Fatalf("expected error for non-struct")
	}
	type bad struct {
		Name string `form:"name,minlen=abc"`
	}
	if _, err := FromStruct(bad{}); err == nil {
		t.Fatalf("expected error for malformed minlen")
	}
	type unknown struct {
		Name string `form:"name,colour=red"`
	}
	if _, err := FromStruct(unknown{}); err == nil {
		t.Fatalf("expected error for unknown option")
	}
}

func TestSectionBuildsUntypedQuestions(t *testing.T) {
	section, err := Section("Sign up", signup{})
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	if section.Title != "Sign up" || len(section.Questions) != 7 {
		t.Fatalf("unexpected section %#v", section)
	}
	for _, q := range section.Questions {
		if q.Type != "" || q.Metadata == nil || q.Metadata.Name != q.ID {
			t.Fatalf("expected untyped question bound to metadata, got %#v", q)
		}
	}
}
