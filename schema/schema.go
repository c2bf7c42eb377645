// Package schema exports tool parameters as JSON Schema,
// for LLM function calling and host forms.
package schema

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/gworks/utils"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ExtraForm is the schema extension with the input surface of a parameter.
const ExtraForm = "x-form"

var (
	cache   = make(map[string]*Function)
	cacheMu sync.Mutex
)

// Schema is the object schema of tool parameters.
type Schema struct {
	*jsonschema.Schema
}

// Function is the function calling definition of a tool.
type Function struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
	// Fingerprint changes when the parameters change.
	Fingerprint string `json:"fingerprint"`
}

// New returns the object schema for the parameters,
// labels are returned for the locale.
func New(specs []*tools.ParameterSpec, locale string) *Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string

	for _, spec := range specs {
		if spec == nil {
			continue
		}
		props.Set(spec.Name, property(spec, locale))
		if spec.Required {
			required = append(required, spec.Name)
		}
	}

	return &Schema{
		Schema: &jsonschema.Schema{
			Type:                 "object",
			Properties:           props,
			AdditionalProperties: jsonschema.FalseSchema,
			Required:             required,
		},
	}
}

func (s *Schema) String() string {
	return utils.ToJSONIndent(s.Schema)
}

// Fingerprint returns xxhash of the schema in hex.
func (s *Schema) Fingerprint() string {
	return strconv.FormatUint(xxhash.Sum64String(utils.ToJSON(s.Schema)), 16)
}

// ForTool returns the function definition of the tool.
// Tool parameters are deterministic, so the result is cached by name and locale.
func ForTool(tool tools.Tool, locale string) *Function {
	key := tool.Name() + "@" + locale

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if f, ok := cache[key]; ok {
		return f
	}

	s := New(tool.Parameters(), locale)
	f := &Function{
		Name:        tool.Name(),
		Description: tool.Description(),
		Parameters:  s.Schema,
		Fingerprint: s.Fingerprint(),
	}
	cache[key] = f
	return f
}

func property(spec *tools.ParameterSpec, locale string) *jsonschema.Schema {
	prop := &jsonschema.Schema{
		Title:       spec.Label.Get(locale),
		Description: description(spec, locale),
		Default:     spec.Default,
		Extras: map[string]any{
			ExtraForm: string(spec.Form),
		},
	}

	switch spec.Type {
	case tools.ParameterTypeSelect:
		prop.Type = "string"
		for _, opt := range spec.Options {
			prop.Enum = append(prop.Enum, opt)
		}
	case tools.ParameterTypeFile:
		prop.Type = "object"
		prop.Properties = fileProperties()
		prop.Required = []string{"id", "type"}
	case tools.ParameterTypeNumber, tools.ParameterTypeBoolean:
		prop.Type = string(spec.Type)
	default:
		prop.Type = "string"
	}
	return prop
}

// description returns the LLM description for parameters filled by LLM,
// and the human description otherwise.
func description(spec *tools.ParameterSpec, locale string) string {
	if spec.Form == tools.InputSurfaceLLM && spec.LLMDescription != "" {
		return spec.LLMDescription
	}
	if d := spec.HumanDescription.Get(locale); d != "" {
		return d
	}
	return spec.LLMDescription
}

func fileProperties() *orderedmap.OrderedMap[string, *jsonschema.Schema] {
	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set("id", &jsonschema.Schema{
		Type:        "string",
		Description: "Host file reference",
	})
	props.Set("type", &jsonschema.Schema{
		Type: "string",
		Enum: []any{
			string(tools.FileTypeImage),
			string(tools.FileTypeDocument),
			string(tools.FileTypeAudio),
			string(tools.FileTypeVideo),
			string(tools.FileTypeCustom),
		},
	})
	return props
}
