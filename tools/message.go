package tools

import (
	"encoding/json"
	"fmt"
)

// MessageType is the variant of a Message.
type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeJSON MessageType = "json"
	MessageTypeBlob MessageType = "blob"
)

// MetaMimeType is the blob meta key for the MIME type.
const MetaMimeType = "mime_type"

// Message is a single output of an invocation.
// Only the fields of its Type are set.
type Message struct {
	Type   MessageType    `json:"type" yaml:"type"`
	Text   string         `json:"text,omitempty" yaml:"text,omitempty"`
	JSON   map[string]any `json:"json,omitempty" yaml:"json,omitempty"`
	Blob   []byte         `json:"blob,omitempty" yaml:"blob,omitempty"`
	Meta   map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
	SaveAs string         `json:"save_as,omitempty" yaml:"save_as,omitempty"`
}

// NewTextMessage returns a text message.
func NewTextMessage(text string) *Message {
	return &Message{
		Type: MessageTypeText,
		Text: text,
	}
}

// NewJSONMessage returns a JSON message.
func NewJSONMessage(obj map[string]any) *Message {
	return &Message{
		Type: MessageTypeJSON,
		JSON: obj,
	}
}

// NewBlobMessage returns a blob message to be stored by the host under saveAs.
func NewBlobMessage(blob []byte, meta map[string]any, saveAs string) *Message {
	return &Message{
		Type:   MessageTypeBlob,
		Blob:   blob,
		Meta:   meta,
		SaveAs: saveAs,
	}
}

// MimeType returns the MIME type from the blob meta.
func (m *Message) MimeType() string {
	s, _ := m.Meta[MetaMimeType].(string)
	return s
}

func (m *Message) String() string {
	switch m.Type {
	case MessageTypeText:
		return m.Text
	case MessageTypeJSON:
		js, _ := json.MarshalIndent(m.JSON, "", "\t")
		return string(js)
	case MessageTypeBlob:
		return fmt.Sprintf("blob: save_as=%s, mime_type=%s, size=%d", m.SaveAs, m.MimeType(), len(m.Blob))
	}
	return string(m.Type)
}
