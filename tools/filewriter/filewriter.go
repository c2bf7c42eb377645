// Package filewriter provides a tool that materializes text or binary content
// as a file blob for the host to store.
package filewriter

import (
	"context"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/pkg/metricskey"
	"github.com/effective-security/gworks/tools"
)

const ToolName = "file_writer"

// Parameter names
const (
	ParamContent  = "content"
	ParamFileType = "file_type"
	ParamFileName = "file_name"
)

const (
	DefaultFileType = "text"
	DefaultFileName = "file"
)

// Reported messages
const (
	MsgNoContent = "No content provided"
	MsgPrepared  = "Successfully prepared content"
)

// Format is the MIME type and extension of a file type.
type Format struct {
	MimeType  string
	Extension string
}

// FileTypes lists supported file types in display order.
var FileTypes = []string{"text", "json", "markdown", "audio", "video", "binary"}

var formats = map[string]Format{
	"text":     {MimeType: "text/plain", Extension: ".txt"},
	"json":     {MimeType: "application/json", Extension: ".json"},
	"markdown": {MimeType: "text/markdown", Extension: ".md"},
	"audio":    {MimeType: "audio/mpeg", Extension: ".mp3"},
	"video":    {MimeType: "video/mp4", Extension: ".mp4"},
	"binary":   {MimeType: "application/octet-stream", Extension: ".bin"},
}

// Lookup returns the format and the resolved file type,
// unknown types use the text format.
func Lookup(fileType string) (Format, string) {
	if f, ok := formats[fileType]; ok {
		return f, fileType
	}
	return formats[DefaultFileType], DefaultFileType
}

// Encode returns content as bytes: strings are UTF-8 encoded, bytes are returned as is.
func Encode(content any) ([]byte, error) {
	switch v := content.(type) {
	case string:
		if !utf8.ValidString(v) {
			return nil, errors.New("content is not valid UTF-8 text")
		}
		return []byte(v), nil
	case []byte:
		return v, nil
	}
	return nil, errors.Newf("unsupported content type %T", content)
}

// Tool prepares content as a file.
type Tool struct{}

// ensure Tool implements the tools.Tool interface
var _ tools.Tool = (*Tool)(nil)

func New() *Tool {
	return &Tool{}
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "Writes the content to a file of the selected type."
}

func (t *Tool) Parameters() []*tools.ParameterSpec {
	return []*tools.ParameterSpec{
		{
			Name:             ParamContent,
			Label:            tools.I18n{tools.LocaleEnUS: "Content", tools.LocaleJaJP: "内容"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "The content to write to the file.", tools.LocaleJaJP: "ファイルに書き込む内容。"},
			LLMDescription:   "The text content to write to the file.",
			Type:             tools.ParameterTypeString,
			Form:             tools.InputSurfaceLLM,
			Required:         true,
		},
		{
			Name:             ParamFileType,
			Label:            tools.I18n{tools.LocaleEnUS: "File Type", tools.LocaleJaJP: "ファイル形式"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "The type of the file to create.", tools.LocaleJaJP: "作成するファイルの形式。"},
			Type:             tools.ParameterTypeSelect,
			Form:             tools.InputSurfaceForm,
			Options:          FileTypes,
			Default:          DefaultFileType,
		},
		{
			Name:             ParamFileName,
			Label:            tools.I18n{tools.LocaleEnUS: "File Name", tools.LocaleJaJP: "ファイル名"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "The file name without extension.", tools.LocaleJaJP: "拡張子を除いたファイル名。"},
			Type:             tools.ParameterTypeString,
			Form:             tools.InputSurfaceForm,
			Default:          DefaultFileName,
		},
	}
}

// Invoke returns a status message followed by the file blob.
func (t *Tool) Invoke(ctx context.Context, callerID string, params tools.Parameters) ([]*tools.Message, error) {
	if !params.Has(ParamContent) {
		return nil, tools.NewInputError(MsgNoContent)
	}
	content, _ := params.Get(ParamContent)

	format, fileType := Lookup(params.GetString(ParamFileType, DefaultFileType))

	data, err := Encode(content)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode content")
	}
	metricskey.StatsFileBytesPrepared.IncrCounter(float64(len(data)), fileType)

	return []*tools.Message{
		tools.NewTextMessage(MsgPrepared),
		tools.NewBlobMessage(
			data,
			map[string]any{tools.MetaMimeType: format.MimeType},
			params.GetString(ParamFileName, DefaultFileName)+format.Extension,
		),
	}, nil
}
