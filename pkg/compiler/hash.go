package compiler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Hash returns a stable fingerprint of a definition. Identical definitions
// hash identically and any authored change produces a different value, so
// the hash is safe to use as a memoization key.
func Hash(def model.FormDefinition) (string, error) {
	payload, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("compiler: hash definition %q: %w", def.ID, err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(payload)), nil
}

const (
	sanitizerStrict = "strict"
	sanitizerNone   = "none"
	sanitizerCustom = "custom"
)

// Fingerprinter is implemented by translators whose output depends on more
// than their type, such as a loaded catalog version.
type Fingerprinter interface {
	Fingerprint() string
}

// Fingerprint identifies the settings that shape compiled output besides the
// definition itself: locale, translator, sanitizer and profile. Two compilers
// with equal fingerprints produce identical forms for identical definitions.
func (c *Compiler) Fingerprint() string {
	translator := "-"
	if c.translator != nil {
		translator = fmt.Sprintf("%T", c.translator)
		if fp, ok := c.translator.(Fingerprinter); ok {
			translator += "@" + fp.Fingerprint()
		}
	}
	raw := strings.Join([]string{
		"locale=" + c.locale,
		"translator=" + translator,
		"sanitizer=" + c.sanitizer,
		"profile=" + c.profile,
	}, ";")
	return fmt.Sprintf("%016x", xxhash.Sum64String(raw))
}
