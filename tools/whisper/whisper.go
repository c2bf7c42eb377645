// Package whisper provides a tool that transcribes audio files with a
// Whisper compatible transcription service.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/pkg/metricskey"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gworks/tools", "whisper")

const ToolName = "faster_whisper"

// Service defaults
const (
	DefaultBaseURL     = "http://localhost:8000"
	TranscriptionsPath = "/v1/audio/transcriptions"
	DefaultModel       = "whisper-1"
	DefaultTimeout     = 120 * time.Second
)

// Parameter names
const (
	ParamAudioFile  = "audio_file"
	ParamTask       = "task"
	ParamLanguage   = "language"
	ParamChunkLevel = "chunk_level"
	ParamVersion    = "version"
)

// Parameter defaults, passed to the service as is.
const (
	DefaultTask       = "transcribe"
	DefaultLanguage   = "en"
	DefaultChunkLevel = "segment"
	DefaultVersion    = "3"
)

// MsgInvalidAudioFile is reported when audio_file is missing or not an audio file.
const MsgInvalidAudioFile = "Not a valid audio file."

const (
	uploadFileName  = "audio_file"
	maxResponseSize = 32 << 20
)

// Request is the transcription request.
type Request struct {
	Audio      []byte
	MimeType   string
	Task       string
	Language   string
	ChunkLevel string
	Version    string
}

// Tool transcribes audio files.
type Tool struct {
	files      tools.FileAccessor
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// ensure Tool implements the tools.Tool interface
var _ tools.Tool = (*Tool)(nil)

// New returns the transcription tool reading audio through the file accessor.
func New(files tools.FileAccessor) *Tool {
	return &Tool{
		files:      files,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
}

// WithBaseURL sets the base URL of the transcription service, empty value keeps the current one.
func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = values.StringsCoalesce(strings.TrimRight(baseURL, "/"), t.baseURL)
	return t
}

// WithModel sets the model name sent to the service, empty value keeps the current one.
func (t *Tool) WithModel(model string) *Tool {
	t.model = values.StringsCoalesce(model, t.model)
	return t
}

// WithTimeout sets the timeout of the transcription request.
func (t *Tool) WithTimeout(timeout time.Duration) *Tool {
	if timeout > 0 {
		t.timeout = timeout
	}
	return t
}

// WithHTTPClient sets the HTTP client, nil restores the default client.
// The client is not modified, the tool timeout is applied to each request context.
func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	if client == nil {
		client = http.DefaultClient
	}
	t.httpClient = client
	return t
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "Transcribes or translates an audio file with Faster Whisper."
}

// Endpoint returns the URL of the transcription endpoint.
func (t *Tool) Endpoint() string {
	return t.baseURL + TranscriptionsPath
}

func (t *Tool) Parameters() []*tools.ParameterSpec {
	return []*tools.ParameterSpec{
		{
			Name:             ParamAudioFile,
			Label:            tools.I18n{tools.LocaleEnUS: "Audio File", tools.LocaleJaJP: "オーディオファイル"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "The audio file to be transcribed.", tools.LocaleJaJP: "文字起こし対象のオーディオファイル。"},
			Type:             tools.ParameterTypeFile,
			Form:             tools.InputSurfaceUpload,
			Required:         true,
		},
		{
			Name:             ParamTask,
			Label:            tools.I18n{tools.LocaleEnUS: "Task", tools.LocaleJaJP: "タスク"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "Transcribe or translate", tools.LocaleJaJP: "書き起こしか翻訳かを指定。"},
			Type:             tools.ParameterTypeString,
			Form:             tools.InputSurfaceForm,
			Default:          DefaultTask,
		},
		{
			Name:             ParamLanguage,
			Label:            tools.I18n{tools.LocaleEnUS: "Language", tools.LocaleJaJP: "言語"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "Language of the audio file.", tools.LocaleJaJP: "オーディオファイルの言語。"},
			Type:             tools.ParameterTypeString,
			Form:             tools.InputSurfaceForm,
			Default:          DefaultLanguage,
		},
		{
			Name:             ParamChunkLevel,
			Label:            tools.I18n{tools.LocaleEnUS: "Chunk Level", tools.LocaleJaJP: "チャンクレベル"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "Segment or word level.", tools.LocaleJaJP: "セグメント単位か単語単位か。"},
			Type:             tools.ParameterTypeString,
			Form:             tools.InputSurfaceForm,
			Default:          DefaultChunkLevel,
		},
		{
			Name:             ParamVersion,
			Label:            tools.I18n{tools.LocaleEnUS: "Model Version", tools.LocaleJaJP: "モデルバージョン"},
			HumanDescription: tools.I18n{tools.LocaleEnUS: "Which Whisper version to use.", tools.LocaleJaJP: "使用するWhisperバージョン。"},
			Type:             tools.ParameterTypeString,
			Form:             tools.InputSurfaceForm,
			Default:          DefaultVersion,
		},
	}
}

// Invoke returns the full transcription result as JSON message,
// followed by the transcript text.
func (t *Tool) Invoke(ctx context.Context, callerID string, params tools.Parameters) ([]*tools.Message, error) {
	file, ok := params.GetFile(ParamAudioFile)
	if !ok || file.Type != tools.FileTypeAudio {
		return nil, tools.NewInputError(MsgInvalidAudioFile)
	}
	if t.files == nil {
		return nil, errors.New("file accessor is not configured")
	}

	audio, err := t.files.Download(ctx, file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to download audio file")
	}
	mimeType, err := tools.GetAttributeString(ctx, t.files, file, tools.FileAttributeMimeType)
	if err != nil {
		return nil, err
	}

	result, err := t.Transcribe(ctx, &Request{
		Audio:      audio,
		MimeType:   mimeType,
		Task:       params.GetString(ParamTask, DefaultTask),
		Language:   params.GetString(ParamLanguage, DefaultLanguage),
		ChunkLevel: params.GetString(ParamChunkLevel, DefaultChunkLevel),
		Version:    params.GetString(ParamVersion, DefaultVersion),
	})
	if err != nil {
		return nil, err
	}

	text, _ := result["text"].(string)
	return []*tools.Message{
		tools.NewJSONMessage(result),
		tools.NewTextMessage(text),
	}, nil
}

// Transcribe sends a single request to the transcription service
// and returns the decoded JSON body.
func (t *Tool) Transcribe(ctx context.Context, req *Request) (map[string]any, error) {
	body, contentType, err := t.encodeRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	endpoint := t.Endpoint()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	started := time.Now()
	metricskey.StatsTranscriptionBytesSent.IncrCounter(float64(len(req.Audio)), t.model)

	resp, err := t.httpClient.Do(httpReq)
	metricskey.PerfTranscriptionRequest.MeasureSince(started, t.model)
	if err != nil {
		return nil, errors.Wrap(err, "transcription request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"invocation", tools.GetInvocationID(ctx),
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"audio_size", len(req.Audio),
		"response_size", len(respBody),
		"elapsed", time.Since(started).String())

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Newf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), endpoint)
	}

	var result map[string]any
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	if dec.More() {
		return nil, errors.New("failed to decode response: unexpected data after JSON object")
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

func (t *Tool) encodeRequest(req *Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, uploadFileName))
	h.Set("Content-Type", values.StringsCoalesce(req.MimeType, "application/octet-stream"))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to create file part")
	}
	if _, err = part.Write(req.Audio); err != nil {
		return nil, "", errors.Wrap(err, "failed to write file part")
	}

	fields := []struct {
		name  string
		value string
	}{
		{"model", t.model},
		{ParamTask, values.StringsCoalesce(req.Task, DefaultTask)},
		{ParamLanguage, values.StringsCoalesce(req.Language, DefaultLanguage)},
		{ParamChunkLevel, values.StringsCoalesce(req.ChunkLevel, DefaultChunkLevel)},
		{ParamVersion, values.StringsCoalesce(req.Version, DefaultVersion)},
	}
	for _, f := range fields {
		if err = w.WriteField(f.name, f.value); err != nil {
			return nil, "", errors.Wrapf(err, "failed to write %s field", f.name)
		}
	}
	if err = w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to close multipart writer")
	}
	return &buf, w.FormDataContentType(), nil
}
