package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Mode selects which editing surface drives the widget rendering
type Mode string

const (
	ModePhoto Mode = "PHOTO"
	ModeText  Mode = "TEXT"
)

// TextAlignment is the horizontal alignment of the note text
type TextAlignment string

const (
	AlignLeft   TextAlignment = "LEFT"
	AlignCenter TextAlignment = "CENTER"
	AlignRight  TextAlignment = "RIGHT"
)

// Value domains for the photo transform and text style
const (
	MinZoom        = 0.5
	MaxZoom        = 4.0
	DefaultZoom    = 1.0
	MinBrightness  = -1.0
	MaxBrightness  = 1.0
	MinFontSizeSp  = 12.0
	MaxFontSizeSp  = 28.0
	DefaultFontKey = "default"
	DefaultFontSP  = 16.0
)

// KnownFontKeys lists the font families the renderer understands
var KnownFontKeys = []string{"default", "serif", "sans", "mono"}

// CropRect is a crop rectangle normalized to the full image (0..1 on each axis)
type CropRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Valid returns true if the rectangle is inside the unit square and not inverted
func (c *CropRect) Valid() bool {
	if c == nil {
		return false
	}
	inUnit := func(v float64) bool { return v >= 0 && v <= 1 }
	return inUnit(c.Left) && inUnit(c.Top) && inUnit(c.Right) && inUnit(c.Bottom) &&
		c.Left < c.Right && c.Top < c.Bottom
}

// PhotoState holds the selected photo and how it is framed.
// Path is empty when no photo is selected and is encoded as JSON null.
type PhotoState struct {
	Path       string
	Zoom       float64
	OffsetX    float64
	OffsetY    float64
	Brightness float64
	Crop       *CropRect // nil means the full image
}

type photoStateJSON struct {
	Path       *string   `json:"path"`
	Zoom       float64   `json:"zoom"`
	OffsetX    float64   `json:"offsetX"`
	OffsetY    float64   `json:"offsetY"`
	Brightness float64   `json:"brightness"`
	Crop       *CropRect `json:"crop"`
}

func (p PhotoState) toJSON() photoStateJSON {
	out := photoStateJSON{
		Zoom:       p.Zoom,
		OffsetX:    p.OffsetX,
		OffsetY:    p.OffsetY,
		Brightness: p.Brightness,
		Crop:       p.Crop,
	}
	if p.Path != "" {
		path := p.Path
		out.Path = &path
	}
	return out
}

// MarshalJSON encodes every field, writing an unset path as null
func (p PhotoState) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toJSON())
}

// UnmarshalJSON decodes on top of the current values so absent fields keep them
func (p *PhotoState) UnmarshalJSON(data []byte) error {
	in := p.toJSON()
	if p.Crop != nil {
		crop := *p.Crop
		in.Crop = &crop
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.Path = ""
	if in.Path != nil {
		p.Path = *in.Path
	}
	p.Zoom = in.Zoom
	p.OffsetX = in.OffsetX
	p.OffsetY = in.OffsetY
	p.Brightness = in.Brightness
	p.Crop = in.Crop
	return nil
}

// TextStyleState holds typography settings independent of concrete font objects
type TextStyleState struct {
	FontKey    string        `json:"fontKey"`
	IsBold     bool          `json:"isBold"`
	Alignment  TextAlignment `json:"alignment"`
	FontSizeSp float64       `json:"fontSizeSp"`
}

// TextState is the note content and its style
type TextState struct {
	Content string         `json:"content"`
	Style   TextStyleState `json:"style"`
}

// WidgetState is the complete persisted configuration of one widget
type WidgetState struct {
	Mode  Mode       `json:"mode"`
	Photo PhotoState `json:"photo"`
	Text  TextState  `json:"text"`
}

// DefaultPhotoState returns an unselected photo with the identity transform
func DefaultPhotoState() PhotoState {
	return PhotoState{Zoom: DefaultZoom}
}

// DefaultTextState returns an empty note with the default style
func DefaultTextState() TextState {
	return TextState{
		Style: TextStyleState{
			FontKey:    DefaultFontKey,
			Alignment:  AlignCenter,
			FontSizeSp: DefaultFontSP,
		},
	}
}

// DefaultWidgetState returns the state used when nothing has been saved yet
func DefaultWidgetState() WidgetState {
	return WidgetState{
		Mode:  ModePhoto,
		Photo: DefaultPhotoState(),
		Text:  DefaultTextState(),
	}
}

// HasPhoto returns true if a photo is selected
func (s WidgetState) HasPhoto() bool {
	return s.Photo.Path != ""
}

// HasText returns true if the note has non-blank content
func (s WidgetState) HasText() bool {
	return strings.TrimSpace(s.Text.Content) != ""
}

// Equal reports structural equality, comparing crop rectangles by value
func (s WidgetState) Equal(other WidgetState) bool {
	a, b := s.Photo, other.Photo
	switch {
	case a.Crop == nil && b.Crop == nil:
	case a.Crop == nil || b.Crop == nil:
		return false
	case *a.Crop != *b.Crop:
		return false
	}
	a.Crop, b.Crop = nil, nil
	return s.Mode == other.Mode && a == b && s.Text == other.Text
}

// Toggle returns the other mode
func (m Mode) Toggle() Mode {
	if m == ModeText {
		return ModePhoto
	}
	return ModeText
}

// ParseMode parses a mode name case-insensitively ("photo", "TEXT", ...)
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModePhoto:
		return ModePhoto, nil
	case ModeText:
		return ModeText, nil
	}
	return "", fmt.Errorf("unknown mode %q (expected photo or text)", s)
}

// UnmarshalText rejects anything but the known mode names
func (m *Mode) UnmarshalText(text []byte) error {
	switch v := Mode(text); v {
	case ModePhoto, ModeText:
		*m = v
		return nil
	}
	return fmt.Errorf("unknown mode %q", string(text))
}

// UnmarshalText rejects anything but the known alignments
func (a *TextAlignment) UnmarshalText(text []byte) error {
	switch v := TextAlignment(text); v {
	case AlignLeft, AlignCenter, AlignRight:
		*a = v
		return nil
	}
	return fmt.Errorf("unknown alignment %q", string(text))
}

// Clamp limits value to [min, max]. NaN clamps to min.
func Clamp(value, min, max float64) float64 {
	switch {
	case math.IsNaN(value), value < min:
		return min
	case value > max:
		return max
	default:
		return value
	}
}

// finite reports whether v can be stored; JSON has no NaN or Inf
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ClampZoom(v float64) float64       { return Clamp(v, MinZoom, MaxZoom) }
func ClampBrightness(v float64) float64 { return Clamp(v, MinBrightness, MaxBrightness) }
func ClampFontSize(v float64) float64   { return Clamp(v, MinFontSizeSp, MaxFontSizeSp) }

// EncodeState serializes the state to a flat JSON object, defaults included
func EncodeState(state WidgetState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode widget state: %w", err)
	}
	return string(data), nil
}

// DecodeState parses a stored state. Blank input is the default state.
// Fields missing from raw keep their defaults and unknown fields are ignored.
func DecodeState(raw string) (WidgetState, error) {
	state := DefaultWidgetState()
	if strings.TrimSpace(raw) == "" {
		return state, nil
	}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return DefaultWidgetState(), fmt.Errorf("failed to decode widget state: %w", err)
	}
	return state, nil
}

// DecodeStateOrDefault is DecodeState with the error replaced by the default state
func DecodeStateOrDefault(raw string) WidgetState {
	state, err := DecodeState(raw)
	if err != nil {
		return DefaultWidgetState()
	}
	return state
}
