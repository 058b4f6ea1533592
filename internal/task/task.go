// Package task holds the in-memory task list fed by the console, the control
// socket and the clipboard detector.
package task

import (
	"bytes"
	"time"
)

// ID identifies a task. IDs are ULIDs and never repeat within a process.
type ID string

// Kind is the variant of a task.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	default:
		return "text"
	}
}

// Color is a palette entry.
type Color struct {
	Name    string
	R, G, B uint8
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

// Palette is the fixed row color sequence. Tasks pick an entry by insertion
// count modulo len(Palette).
var Palette = [8]Color{
	{"red-100", 255, 235, 238},
	{"blue-100", 227, 242, 253},
	{"green-100", 232, 245, 233},
	{"yellow-100", 255, 253, 231},
	{"purple-100", 243, 229, 245},
	{"pink-100", 252, 228, 236},
	{"indigo-100", 232, 234, 246},
	{"teal-100", 224, 242, 241},
}

// Image is a PNG-encoded picture attached to an image task.
type Image struct {
	png           []byte
	width, height int
}

// NewImage takes ownership of data, which must be PNG-encoded.
func NewImage(data []byte, width, height int) *Image {
	return &Image{png: data, width: width, height: height}
}

func (i *Image) Width() int  { return i.width }
func (i *Image) Height() int { return i.height }
func (i *Image) Size() int   { return len(i.png) }

// PNG returns a copy of the encoded image.
func (i *Image) PNG() []byte { return bytes.Clone(i.png) }

// Task is a single tracked item. Fields are only changed through Store.
type Task struct {
	id         ID
	text       string
	completed  bool
	colorIndex int
	createdAt  time.Time
	kind       Kind
	image      *Image
}

func (t Task) ID() ID               { return t.id }
func (t Task) Text() string         { return t.text }
func (t Task) Completed() bool      { return t.completed }
func (t Task) ColorIndex() int      { return t.colorIndex }
func (t Task) Color() Color         { return Palette[t.colorIndex] }
func (t Task) CreatedAt() time.Time { return t.createdAt }
func (t Task) Kind() Kind           { return t.kind }

// Image returns the attached image, or nil for text tasks.
func (t Task) Image() *Image { return t.image }

// Progress is the derived {completed, total} pair.
type Progress struct {
	Completed int
	Total     int
}
