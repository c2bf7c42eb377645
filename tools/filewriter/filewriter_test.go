package filewriter_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/gworks/tools/filewriter"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parameters(t *testing.T) {
	tool := filewriter.New()
	assert.Equal(t, "file_writer", tool.Name())

	params := tool.Parameters()
	require.NoError(t, tools.ValidateParameters(params))
	require.Len(t, params, 3)

	assert.Equal(t, filewriter.ParamContent, params[0].Name)
	assert.True(t, params[0].Required)
	assert.Equal(t, tools.InputSurfaceLLM, params[0].Form)

	assert.Equal(t, filewriter.ParamFileType, params[1].Name)
	assert.Equal(t, tools.ParameterTypeSelect, params[1].Type)
	assert.Equal(t, []string{"text", "json", "markdown", "audio", "video", "binary"}, params[1].Options)
	assert.Equal(t, "text", params[1].Default)

	assert.Equal(t, filewriter.ParamFileName, params[2].Name)
	assert.Equal(t, "file", params[2].Default)
}

func Test_ScenarioA(t *testing.T) {
	msgs := tools.Run(context.Background(), filewriter.New(), "user1", map[string]any{
		"content":   "hello",
		"file_type": "json",
		"file_name": "out",
	})

	exp := []*tools.Message{
		{Type: tools.MessageTypeText, Text: "Successfully prepared content"},
		{
			Type:   tools.MessageTypeBlob,
			Blob:   []byte("hello"),
			Meta:   map[string]any{"mime_type": "application/json"},
			SaveAs: "out.json",
		},
	}
	if diff := cmp.Diff(exp, msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func Test_NoContent(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]map[string]any{
		"missing": {"file_type": "json"},
		"nil":     {"content": nil},
		"empty":   {"content": ""},
		"bytes":   {"content": []byte{}},
	} {
		t.Run(name, func(t *testing.T) {
			msgs := tools.Run(ctx, filewriter.New(), "user1", raw)
			require.Len(t, msgs, 1)
			assert.Equal(t, tools.MessageTypeText, msgs[0].Type)
			assert.Equal(t, "No content provided", msgs[0].Text)
		})
	}
}

func Test_FileTypes(t *testing.T) {
	exp := map[string][2]string{
		"text":     {"text/plain", ".txt"},
		"json":     {"application/json", ".json"},
		"markdown": {"text/markdown", ".md"},
		"audio":    {"audio/mpeg", ".mp3"},
		"video":    {"video/mp4", ".mp4"},
		"binary":   {"application/octet-stream", ".bin"},
		// unknown types fall back to text
		"unknownxyz": {"text/plain", ".txt"},
		"JSON":       {"text/plain", ".txt"},
	}

	ctx := context.Background()
	for fileType, want := range exp {
		t.Run(fileType, func(t *testing.T) {
			f, resolved := filewriter.Lookup(fileType)
			assert.Equal(t, want[0], f.MimeType)
			assert.Equal(t, want[1], f.Extension)
			if want[1] == ".txt" {
				assert.Equal(t, filewriter.DefaultFileType, resolved)
			} else {
				assert.Equal(t, fileType, resolved)
			}

			msgs := tools.Run(ctx, filewriter.New(), "user1", map[string]any{
				"content":   "data",
				"file_type": fileType,
				"file_name": "report",
			})
			require.Len(t, msgs, 2)
			assert.Equal(t, tools.MessageTypeBlob, msgs[1].Type)
			assert.Equal(t, want[0], msgs[1].MimeType())
			assert.Equal(t, "report"+want[1], msgs[1].SaveAs)
		})
	}
}

func Test_Defaults(t *testing.T) {
	msgs := tools.Run(context.Background(), filewriter.New(), "user1", map[string]any{
		"content": "plain",
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, "Successfully prepared content", msgs[0].Text)
	assert.Equal(t, "text/plain", msgs[1].MimeType())
	assert.Equal(t, "file.txt", msgs[1].SaveAs)

	// invoked directly, without resolution by Run
	msgs, err := filewriter.New().Invoke(context.Background(), "user1", tools.Parameters{
		"content":   "plain",
		"file_type": "unknownxyz",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "file.txt", msgs[1].SaveAs)
}

func Test_BinaryPassThrough(t *testing.T) {
	data := []byte{0x00, 0xff, 0x10, 0x80}
	msgs := tools.Run(context.Background(), filewriter.New(), "user1", map[string]any{
		"content":   data,
		"file_type": "binary",
		"file_name": "raw",
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, data, msgs[1].Blob)
	assert.Equal(t, "raw.bin", msgs[1].SaveAs)
}

func Test_EncodeFailures(t *testing.T) {
	ctx := context.Background()

	msgs := tools.Run(ctx, filewriter.New(), "user1", map[string]any{
		"content": "bad \xff\xfe text",
	})
	require.Len(t, msgs, 1)
	assert.Equal(t, "Failed to process file: failed to encode content: content is not valid UTF-8 text", msgs[0].Text)

	msgs = tools.Run(ctx, filewriter.New(), "user1", map[string]any{
		"content": 42,
	})
	require.Len(t, msgs, 1)
	assert.Equal(t, "Failed to process file: failed to encode content: unsupported content type int", msgs[0].Text)
}

type sample struct {
	Sentence string `fake:"{sentence:12}"`
	Name     string `fake:"{name}"`
	City     string `fake:"{city}"`
}

func Test_EncodeRoundTrip(t *testing.T) {
	values := []string{
		"hello",
		"こんにちは世界",
		"emoji 🚀 and accents éàü",
		"line1\nline2\ttab",
	}
	for range 50 {
		var s sample
		_ = gofakeit.Struct(&s)
		values = append(values, s.Sentence, s.Name+", "+s.City)
	}

	for _, v := range values {
		data, err := filewriter.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, v, string(data))
	}
}
