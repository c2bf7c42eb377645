package utils

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONIndent returns the JSON body indented with tabs,
// or an empty string if the body is not valid JSON.
func JSONIndent(body string) string {
	var buf bytes.Buffer
	_ = json.Indent(&buf, []byte(body), "", "\t")
	return buf.String()
}

func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

func ToYAML(val any) string {
	js, _ := yaml.Marshal(val)
	return string(js)
}

// MergeInputs returns a new map with the values of base,
// overridden by the values of inputs.
func MergeInputs(base map[string]any, inputs map[string]any) map[string]any {
	res := make(map[string]any, len(base)+len(inputs))
	for k, v := range base {
		res[k] = v
	}
	for k, v := range inputs {
		res[k] = v
	}
	return res
}
