package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/effective-security/gworks/schema"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/gworks/tools/filewriter"
	"github.com/effective-security/gworks/tools/whisper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	s := schema.New(filewriter.New().Parameters(), tools.LocaleEnUS)

	exp := `{
	"properties": {
		"content": {
			"type": "string",
			"title": "Content",
			"description": "The text content to write to the file.",
			"x-form": "llm"
		},
		"file_type": {
			"type": "string",
			"enum": ["text", "json", "markdown", "audio", "video", "binary"],
			"title": "File Type",
			"description": "The type of the file to create.",
			"default": "text",
			"x-form": "form"
		},
		"file_name": {
			"type": "string",
			"title": "File Name",
			"description": "The file name without extension.",
			"default": "file",
			"x-form": "form"
		}
	},
	"additionalProperties": false,
	"type": "object",
	"required": ["content"]
}`
	assert.JSONEq(t, exp, s.String())

	// properties keep the declared order
	var keys []string
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"content", "file_type", "file_name"}, keys)

	ja := schema.New(filewriter.New().Parameters(), tools.LocaleJaJP)
	ft, ok := ja.Properties.Get("file_type")
	require.True(t, ok)
	assert.Equal(t, "ファイル形式", ft.Title)
	assert.Equal(t, "作成するファイルの形式。", ft.Description)
	assert.NotEqual(t, s.Fingerprint(), ja.Fingerprint())
}

func TestSchema_File(t *testing.T) {
	s := schema.New(whisper.New(nil).Parameters(), tools.LocaleEnUS)

	audio, ok := s.Properties.Get(whisper.ParamAudioFile)
	require.True(t, ok)
	assert.Equal(t, "object", audio.Type)
	assert.Equal(t, []string{"id", "type"}, audio.Required)
	assert.Equal(t, "upload", audio.Extras[schema.ExtraForm])

	typ, ok := audio.Properties.Get("type")
	require.True(t, ok)
	assert.Contains(t, typ.Enum, "audio")

	assert.Equal(t, []string{whisper.ParamAudioFile}, s.Required)
}

func TestSchema_Deterministic(t *testing.T) {
	params := whisper.New(nil).Parameters()
	s1 := schema.New(params, tools.LocaleEnUS)
	s2 := schema.New(whisper.New(nil).Parameters(), tools.LocaleEnUS)

	assert.Equal(t, s1.String(), s2.String())
	assert.Equal(t, s1.Fingerprint(), s2.Fingerprint())
	assert.NotEmpty(t, s1.Fingerprint())

	empty := schema.New(nil, tools.LocaleEnUS)
	assert.JSONEq(t, `{"properties":{},"type":"object","additionalProperties":false}`, empty.String())
}

func TestForTool(t *testing.T) {
	tool := filewriter.New()
	f := schema.ForTool(tool, tools.LocaleEnUS)
	assert.Equal(t, filewriter.ToolName, f.Name)
	assert.Equal(t, tool.Description(), f.Description)
	assert.Equal(t, schema.New(tool.Parameters(), tools.LocaleEnUS).Fingerprint(), f.Fingerprint)
	assert.Same(t, f, schema.ForTool(tool, tools.LocaleEnUS))

	js, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(js), `"name":"file_writer"`)
	assert.Contains(t, string(js), `"parameters":{"properties"`)
}
