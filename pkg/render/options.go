package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data renderers use to customise output
// without touching the compiled form.
type RenderOptions struct {
	// Theme adds theme name/variant attributes and a stylesheet link resolved
	// through Theme.AssetURL.
	Theme *theme.RendererConfig
	// CSRFToken is emitted as a hidden input named CSRFField (DefaultCSRFField
	// when empty).
	CSRFToken string
	CSRFField string
	// HiddenFields are additional hidden inputs, rendered sorted by name.
	HiddenFields map[string]string
	// Errors surfaces server-side validation feedback keyed by question id.
	// Keys that match no field are rendered as form-level errors.
	Errors map[string][]string
	// Locale is forwarded to renderers that localize chrome (lang attribute).
	Locale string
}
