package tools

import (
	"fmt"

	"github.com/effective-security/xlog"
)

// Parameters holds parameter values of a single invocation.
type Parameters map[string]any

// Resolve returns parameters with defaults applied to missing or empty values.
// A select value outside of the declared options falls back to the default,
// the host is expected to have validated it already.
func Resolve(specs []*ParameterSpec, raw map[string]any) Parameters {
	params := make(Parameters, len(raw)+len(specs))
	for k, v := range raw {
		params[k] = v
	}

	for _, spec := range specs {
		v, ok := params[spec.Name]
		if !ok || isEmpty(v) {
			if spec.Default != nil {
				params[spec.Name] = spec.Default
			}
			continue
		}

		if spec.Type == ParameterTypeSelect && len(spec.Options) > 0 {
			if s, ok := v.(string); !ok || !spec.Allows(s) {
				logger.KV(xlog.DEBUG,
					"reason", "select_fallback",
					"param", spec.Name,
					"value", v,
					"default", spec.Default)
				if spec.Default != nil {
					params[spec.Name] = spec.Default
				} else {
					delete(params, spec.Name)
				}
			}
		}
	}
	return params
}

// Get returns the raw value.
func (p Parameters) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Has returns true if the parameter is present and not empty.
func (p Parameters) Has(name string) bool {
	v, ok := p[name]
	return ok && !isEmpty(v)
}

// GetString returns the value as string, or def when missing or empty.
// Non-string scalars are formatted, the value is not validated.
func (p Parameters) GetString(name, def string) string {
	switch v := p[name].(type) {
	case nil:
		return def
	case string:
		if v == "" {
			return def
		}
		return v
	case []byte:
		if len(v) == 0 {
			return def
		}
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// GetFile returns the file handle.
// Besides *File and File, the value may be an object with id and type,
// as published by the exported JSON schema.
func (p Parameters) GetFile(name string) (*File, bool) {
	switch v := p[name].(type) {
	case *File:
		return v, v != nil
	case File:
		return &v, true
	case map[string]any:
		id, _ := v["id"].(string)
		typ, _ := v["type"].(string)
		if id == "" {
			return nil, false
		}
		return &File{ID: id, Type: FileType(typ)}, true
	case map[string]string:
		if v["id"] == "" {
			return nil, false
		}
		return &File{ID: v["id"], Type: FileType(v["type"])}, true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []byte:
		return len(val) == 0
	case *File:
		return val == nil
	}
	return false
}
