// Package message defines the cliptask control protocol spoken over the
// local IPC socket.
//
// All messages are newline-delimited JSON. Image payloads are base64-encoded
// so that binary content is safe to embed in JSON strings.
// Each message is exactly one line: <json>\n
package message

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"go.klb.dev/cliptask/internal/task"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests.
	TypeAdd          Type = "ADD"
	TypeSetCompleted Type = "SET_COMPLETED"
	TypeRemove       Type = "REMOVE"
	TypeList         Type = "LIST"
	TypeImage        Type = "IMAGE"
	TypeMonitor      Type = "MONITOR"
	TypeWatch        Type = "WATCH"

	// Responses.
	TypeOK            Type = "OK"
	TypeListResponse  Type = "LIST_RESPONSE"
	TypeImageResponse Type = "IMAGE_RESPONSE"
	TypeSnapshot      Type = "SNAPSHOT"
	TypeError         Type = "ERROR"
)

// TaskInfo is the wire form of a task.
type TaskInfo struct {
	ID          string    `json:"id"`
	Position    int       `json:"position,omitempty"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	Kind        string    `json:"kind"`
	ColorIndex  int       `json:"color_index"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	ImageWidth  int       `json:"image_width,omitempty"`
	ImageHeight int       `json:"image_height,omitempty"`
}

// NewTaskInfo converts t, shown at the 1-based position pos.
func NewTaskInfo(pos int, t task.Task) TaskInfo {
	info := TaskInfo{
		ID:         string(t.ID()),
		Position:   pos,
		Text:       t.Text(),
		Completed:  t.Completed(),
		Kind:       t.Kind().String(),
		ColorIndex: t.ColorIndex(),
		Color:      t.Color().Hex(),
		CreatedAt:  t.CreatedAt(),
	}
	if img := t.Image(); img != nil {
		info.ImageWidth = img.Width()
		info.ImageHeight = img.Height()
	}
	return info
}

// TaskInfos converts a task list in display order.
func TaskInfos(tasks []task.Task) []TaskInfo {
	out := make([]TaskInfo, len(tasks))
	for i, t := range tasks {
		out[i] = NewTaskInfo(i+1, t)
	}
	return out
}

// Progress is the wire form of task.Progress.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func NewProgress(p task.Progress) *Progress {
	return &Progress{Completed: p.Completed, Total: p.Total}
}

// Message is the top-level wire envelope.
type Message struct {
	// Always present
	Type Type `json:"type"`

	// ADD: Text. SET_COMPLETED, REMOVE and IMAGE: Ref is a task id or 1-based
	// position. SET_COMPLETED and MONITOR: Enabled.
	Text    string `json:"text,omitempty"`
	Ref     string `json:"ref,omitempty"`
	Enabled bool   `json:"enabled,omitempty"`

	// OK (after ADD), LIST_RESPONSE, SNAPSHOT
	Tasks      []TaskInfo `json:"tasks,omitempty"`
	Progress   *Progress  `json:"progress,omitempty"`
	Monitoring bool       `json:"monitoring,omitempty"`

	// IMAGE_RESPONSE: base64 PNG
	Data string `json:"data,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Err returns the message's error, if it is an ERROR message.
func (m *Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	return fmt.Errorf("remote: %s", m.Error)
}

// SetData base64-encodes b into Data.
func (m *Message) SetData(b []byte) {
	m.Data = base64.StdEncoding.EncodeToString(b)
}

// DecodeData returns the raw bytes of Data.
func (m *Message) DecodeData() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Data)
}
