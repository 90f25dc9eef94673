package widgets

import (
	"strings"

	"github.com/goliatone/go-formdef/pkg/document"
	"github.com/goliatone/go-formdef/pkg/model"
)

// Input renders single-line inputs. The input type follows the field's
// subtype, except Date widgets which always use type="date".
func Input(ctx Context) []*document.Node {
	field := ctx.Field
	inputType := field.InputSubtype
	if field.Type == model.QuestionTypeDate {
		inputType = "date"
	}
	if inputType == "" {
		inputType = "text"
	}

	control := document.El("input",
		document.A("id", field.ID),
		document.A("name", field.ID),
		document.A("type", inputType),
	)
	if len(field.Value) > 0 && field.Type != model.QuestionTypePassword {
		control.Set("value", field.Value[0])
	}
	controlState(control, ctx)

	return []*document.Node{Label(ctx), Hint(ctx), control, ErrorList(ctx)}
}

// TextArea renders a multi-line text control.
func TextArea(ctx Context) []*document.Node {
	field := ctx.Field
	control := document.El("textarea",
		document.A("id", field.ID),
		document.A("name", field.ID),
	)
	controlState(control, ctx)
	control.Append(document.Text(strings.Join(field.Value, "\n")))

	return []*document.Node{Label(ctx), Hint(ctx), control, ErrorList(ctx)}
}

// File renders a file upload control.
func File(ctx Context) []*document.Node {
	field := ctx.Field
	control := document.El("input",
		document.A("id", field.ID),
		document.A("name", field.ID),
		document.A("type", "file"),
	)
	controlState(control, ctx)
	return []*document.Node{Label(ctx), Hint(ctx), control, ErrorList(ctx)}
}

// RadioGroup renders a fieldset with one radio per option.
func RadioGroup(ctx Context) []*document.Node {
	return []*document.Node{choiceGroup(ctx, "radio")}
}

// CheckboxGroup renders a fieldset with one checkbox per option.
func CheckboxGroup(ctx Context) []*document.Node {
	return []*document.Node{choiceGroup(ctx, "checkbox")}
}

func choiceGroup(ctx Context, inputType string) *document.Node {
	field := ctx.Field
	group := document.El("fieldset", document.A("id", field.ID))
	if field.Required {
		group.Set("aria-required", "true")
	}
	group.SetIf(field.Disabled, "disabled")
	if described := ctx.DescribedBy(); described != "" {
		group.Set("aria-describedby", described)
	}
	if len(ctx.Errors) > 0 {
		group.Set("aria-invalid", "true")
	}

	group.Append(document.El("legend").Append(document.Text(field.Label)), Hint(ctx))
	for _, option := range field.Options {
		input := document.El("input",
			document.A("id", option.Key),
			document.A("name", field.ID),
			document.A("type", inputType),
			document.A("value", option.Value),
			document.A("data-option-key", option.Key),
		)
		// A required checkbox group is satisfied by any one box, which native
		// required cannot express.
		input.SetIf(field.Required && inputType == "radio", "required")
		input.SetIf(option.Selected, "checked")

		group.Append(document.El("div", document.A("class", "formdef-option")).Append(
			input,
			document.El("label", document.A("for", option.Key)).Append(document.Text(option.Label)),
		))
	}
	group.Append(ErrorList(ctx))
	return group
}

// Select renders a dropdown.
func Select(ctx Context) []*document.Node {
	field := ctx.Field
	control := document.El("select",
		document.A("id", field.ID),
		document.A("name", field.ID),
	)
	controlState(control, ctx)
	for _, option := range field.Options {
		node := document.El("option",
			document.A("id", option.Key),
			document.A("value", option.Value),
			document.A("data-option-key", option.Key),
		)
		node.SetIf(option.Selected, "selected")
		control.Append(node.Append(document.Text(option.Label)))
	}
	return []*document.Node{Label(ctx), Hint(ctx), control, ErrorList(ctx)}
}

// Label renders the field label bound to the control id.
func Label(ctx Context) *document.Node {
	return document.El("label", document.A("for", ctx.Field.ID)).Append(document.Text(ctx.Field.Label))
}

// Hint renders the hint paragraph, or nil when the field has none.
func Hint(ctx Context) *document.Node {
	id := ctx.HintID()
	if id == "" {
		return nil
	}
	return document.El("p",
		document.A("id", id),
		document.A("class", "formdef-hint"),
	).Append(document.Text(ctx.Field.Hint))
}

// ErrorList renders inline error messages, or nil when there are none.
func ErrorList(ctx Context) *document.Node {
	id := ctx.ErrorID()
	if id == "" {
		return nil
	}
	list := document.El("ul",
		document.A("id", id),
		document.A("class", "formdef-errors"),
		document.A("role", "alert"),
	)
	for _, message := range ctx.Errors {
		list.Append(document.El("li").Append(document.Text(message)))
	}
	return list
}

func controlState(control *document.Node, ctx Context) {
	field := ctx.Field
	if field.Required {
		control.Set("required", "")
		control.Set("aria-required", "true")
	}
	control.SetIf(field.Disabled, "disabled")
	if described := ctx.DescribedBy(); described != "" {
		control.Set("aria-describedby", described)
	}
	if len(ctx.Errors) > 0 {
		control.Set("aria-invalid", "true")
	}
}
