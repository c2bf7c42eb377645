package tools

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Locales supported by the label lookup.
const (
	LocaleEnUS = "en_US"
	LocaleJaJP = "ja_JP"

	DefaultLocale = LocaleEnUS
)

// I18n maps a locale tag to display text.
type I18n map[string]string

// Get returns the text for the locale, or the DefaultLocale text.
func (t I18n) Get(locale string) string {
	if v := t[locale]; v != "" {
		return v
	}
	return t[DefaultLocale]
}

// ParameterType is the value type of a parameter.
type ParameterType string

const (
	ParameterTypeString  ParameterType = "string"
	ParameterTypeNumber  ParameterType = "number"
	ParameterTypeBoolean ParameterType = "boolean"
	ParameterTypeSelect  ParameterType = "select"
	ParameterTypeFile    ParameterType = "file"
)

// InputSurface defines who provides the parameter value.
type InputSurface string

const (
	// InputSurfaceForm is entered by the user in the host form.
	InputSurfaceForm InputSurface = "form"
	// InputSurfaceLLM is filled by the LLM at run time.
	InputSurfaceLLM InputSurface = "llm"
	// InputSurfaceUpload is a file uploaded by the user.
	InputSurfaceUpload InputSurface = "upload"
)

// ParameterSpec declares a parameter accepted by a tool.
type ParameterSpec struct {
	Name             string        `json:"name" yaml:"name" validate:"required"`
	Label            I18n          `json:"label" yaml:"label" validate:"required"`
	HumanDescription I18n          `json:"human_description,omitempty" yaml:"human_description,omitempty"`
	LLMDescription   string        `json:"llm_description,omitempty" yaml:"llm_description,omitempty"`
	Type             ParameterType `json:"type" yaml:"type" validate:"oneof=string number boolean select file"`
	Form             InputSurface  `json:"form" yaml:"form" validate:"oneof=form llm upload"`
	Required         bool          `json:"required" yaml:"required"`
	// Options is the ordered set of allowed values of a select parameter.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	Default any      `json:"default,omitempty" yaml:"default,omitempty"`
}

// Allows returns true if the value is acceptable for the parameter.
func (p *ParameterSpec) Allows(value string) bool {
	if len(p.Options) == 0 {
		return true
	}
	return slices.Contains(p.Options, value)
}

var validate = validator.New()

// ValidateParameters checks the declared parameters of a tool.
func ValidateParameters(specs []*ParameterSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		if spec == nil {
			return errors.Newf("parameter %d is nil", i)
		}
		if err := validate.Struct(spec); err != nil {
			return errors.Wrapf(err, "invalid parameter %q", spec.Name)
		}
		if _, ok := seen[spec.Name]; ok {
			return errors.Newf("duplicate parameter %q", spec.Name)
		}
		seen[spec.Name] = struct{}{}

		if spec.Type != ParameterTypeSelect {
			continue
		}
		if len(spec.Options) == 0 {
			return errors.Newf("select parameter %q has no options", spec.Name)
		}
		if spec.Default != nil {
			def, ok := spec.Default.(string)
			if !ok || !spec.Allows(def) {
				return errors.Newf("default of select parameter %q is not in options", spec.Name)
			}
		}
	}
	return nil
}
