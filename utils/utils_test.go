package utils_test

import (
	"testing"

	"github.com/effective-security/gworks/utils"
	"github.com/stretchr/testify/assert"
)

func Test_JSON(t *testing.T) {
	val := map[string]any{"text": "hello", "segments": []int{1, 2}}

	assert.Equal(t, `{"segments":[1,2],"text":"hello"}`, utils.ToJSON(val))
	assert.Equal(t, "{\n\t\"segments\": [\n\t\t1,\n\t\t2\n\t],\n\t\"text\": \"hello\"\n}", utils.ToJSONIndent(val))
	assert.Equal(t, "{\n\t\"a\": 1\n}", utils.JSONIndent(`{"a":1}`))
	assert.Empty(t, utils.JSONIndent(`{"a":`))
}

func Test_ToYAML(t *testing.T) {
	val := struct {
		Name string `yaml:"name"`
		Size int    `yaml:"size"`
	}{Name: "file.txt", Size: 3}
	assert.Equal(t, "name: file.txt\nsize: 3\n", utils.ToYAML(val))
}

func Test_MergeInputs(t *testing.T) {
	base := map[string]any{"task": "transcribe", "language": "en"}
	inputs := map[string]any{"language": "ja"}

	res := utils.MergeInputs(base, inputs)
	assert.Equal(t, map[string]any{"task": "transcribe", "language": "ja"}, res)
	assert.Equal(t, "en", base["language"])
	assert.Empty(t, utils.MergeInputs(nil, nil))
}
