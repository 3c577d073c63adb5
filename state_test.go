package main

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestDefaultWidgetState(t *testing.T) {
	s := DefaultWidgetState()

	if s.Mode != ModePhoto {
		t.Errorf("Mode = %q, expected %q", s.Mode, ModePhoto)
	}
	if s.Photo.Path != "" || s.Photo.Crop != nil {
		t.Errorf("Expected no photo and no crop, got %+v", s.Photo)
	}
	if s.Photo.Zoom != 1.0 || s.Photo.OffsetX != 0 || s.Photo.OffsetY != 0 || s.Photo.Brightness != 0 {
		t.Errorf("Unexpected default transform %+v", s.Photo)
	}
	style := s.Text.Style
	if style.FontKey != "default" || style.IsBold || style.Alignment != AlignCenter || style.FontSizeSp != 16 {
		t.Errorf("Unexpected default style %+v", style)
	}
	if s.HasPhoto() || s.HasText() {
		t.Errorf("Default state should have neither photo nor text")
	}
}

func TestHasText(t *testing.T) {
	tests := []struct {
		content  string
		expected bool
	}{
		{"", false},
		{"   ", false},
		{"\n\t", false},
		{"hi", true},
		{"  hi  ", true},
	}

	for _, tt := range tests {
		s := DefaultWidgetState()
		s.Text.Content = tt.content
		if got := s.HasText(); got != tt.expected {
			t.Errorf("HasText(%q) = %v, expected %v", tt.content, got, tt.expected)
		}
	}
}

func sampleState() WidgetState {
	s := DefaultWidgetState()
	s.Mode = ModeText
	s.Photo = PhotoState{
		Path:       "/data/photowidget/photo_widget/photo.jpg",
		Zoom:       2.5,
		OffsetX:    -12.5,
		OffsetY:    40,
		Brightness: -0.25,
		Crop:       &CropRect{Left: 0.1, Top: 0.2, Right: 0.9, Bottom: 0.8},
	}
	s.Text = TextState{
		Content: "Buy milk\nand «bread»",
		Style: TextStyleState{
			FontKey:    "mono",
			IsBold:     true,
			Alignment:  AlignRight,
			FontSizeSp: 22,
		},
	}
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state WidgetState
	}{
		{"defaults", DefaultWidgetState()},
		{"everything set", sampleState()},
		{"photo without crop", func() WidgetState {
			s := sampleState()
			s.Photo.Crop = nil
			return s
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeState(tt.state)
			if err != nil {
				t.Fatalf("EncodeState() failed: %v", err)
			}
			decoded, err := DecodeState(encoded)
			if err != nil {
				t.Fatalf("DecodeState() failed: %v", err)
			}
			if !decoded.Equal(tt.state) {
				t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", decoded, tt.state)
			}
		})
	}
}

func TestEncodeStateIncludesDefaults(t *testing.T) {
	encoded, err := EncodeState(DefaultWidgetState())
	if err != nil {
		t.Fatalf("EncodeState() failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		t.Fatalf("Encoded state is not a JSON object: %v", err)
	}
	var photo map[string]interface{}
	if err := json.Unmarshal(raw["photo"], &photo); err != nil {
		t.Fatalf("Encoded photo is not a JSON object: %v", err)
	}

	for _, key := range []string{"path", "zoom", "offsetX", "offsetY", "brightness", "crop"} {
		if _, ok := photo[key]; !ok {
			t.Errorf("Encoded photo is missing %q: %s", key, encoded)
		}
	}
	if photo["path"] != nil {
		t.Errorf("Unset path should encode as null, got %v", photo["path"])
	}
	if !strings.Contains(encoded, `"mode":"PHOTO"`) {
		t.Errorf("Expected mode PHOTO in %s", encoded)
	}
	if !strings.Contains(encoded, `"fontKey":"default"`) {
		t.Errorf("Expected default fontKey in %s", encoded)
	}
}

func TestDecodeStateFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"absent", "", false},
		{"blank", "   ", false},
		{"garbage", "not json {{{", true},
		{"wrong type", `{"mode": 7}`, true},
		{"unknown mode", `{"mode": "VIDEO"}`, true},
		{"unknown alignment", `{"text": {"style": {"alignment": "JUSTIFY"}}}`, true},
		{"array", `[1,2,3]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := DecodeState(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeState() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !state.Equal(DefaultWidgetState()) {
				t.Errorf("Expected default state, got %+v", state)
			}
			if got := DecodeStateOrDefault(tt.raw); !got.Equal(DefaultWidgetState()) {
				t.Errorf("DecodeStateOrDefault() = %+v, expected default", got)
			}
		})
	}
}

func TestDecodeStateIgnoresUnknownFields(t *testing.T) {
	raw := `{"mode":"TEXT","version":3,"photo":{"path":"/p.jpg","filter":"sepia"},"text":{"content":"hi","style":{"shadow":true}}}`

	state, err := DecodeState(raw)
	if err != nil {
		t.Fatalf("DecodeState() failed: %v", err)
	}
	if state.Mode != ModeText {
		t.Errorf("Mode = %q, expected TEXT", state.Mode)
	}
	if state.Photo.Path != "/p.jpg" {
		t.Errorf("Path = %q, expected /p.jpg", state.Photo.Path)
	}
	if state.Text.Content != "hi" {
		t.Errorf("Content = %q, expected hi", state.Text.Content)
	}
}

func TestDecodeStateMissingFieldsKeepDefaults(t *testing.T) {
	state, err := DecodeState(`{"photo":{"zoom":2},"text":{"style":{"isBold":true}}}`)
	if err != nil {
		t.Fatalf("DecodeState() failed: %v", err)
	}

	if state.Mode != ModePhoto {
		t.Errorf("Mode = %q, expected default PHOTO", state.Mode)
	}
	if state.Photo.Zoom != 2 {
		t.Errorf("Zoom = %v, expected 2", state.Photo.Zoom)
	}
	if state.Text.Style.FontSizeSp != 16 || state.Text.Style.Alignment != AlignCenter || state.Text.Style.FontKey != "default" {
		t.Errorf("Missing style fields should keep defaults, got %+v", state.Text.Style)
	}
	if !state.Text.Style.IsBold {
		t.Errorf("Expected isBold true")
	}
}

func TestDecodeStateNullPath(t *testing.T) {
	state, err := DecodeState(`{"photo":{"path":null,"zoom":1.5}}`)
	if err != nil {
		t.Fatalf("DecodeState() failed: %v", err)
	}
	if state.HasPhoto() {
		t.Errorf("Expected no photo for null path, got %q", state.Photo.Path)
	}
	if state.Photo.Zoom != 1.5 {
		t.Errorf("Zoom = %v, expected 1.5", state.Photo.Zoom)
	}
}

func TestWidgetStateEqualComparesCropByValue(t *testing.T) {
	a := sampleState()
	b := sampleState()
	if a.Photo.Crop == b.Photo.Crop {
		t.Fatal("test needs distinct crop pointers")
	}
	if !a.Equal(b) {
		t.Error("States with equal crops should be equal")
	}

	b.Photo.Crop = &CropRect{Left: 0, Top: 0, Right: 1, Bottom: 1}
	if a.Equal(b) {
		t.Error("States with different crops should not be equal")
	}

	b.Photo.Crop = nil
	if a.Equal(b) {
		t.Error("State with crop should not equal state without")
	}
}

func TestCropRectValid(t *testing.T) {
	tests := []struct {
		name     string
		crop     *CropRect
		expected bool
	}{
		{"nil", nil, false},
		{"full image", &CropRect{0, 0, 1, 1}, true},
		{"inner", &CropRect{0.25, 0.25, 0.75, 0.75}, true},
		{"inverted horizontally", &CropRect{0.8, 0, 0.2, 1}, false},
		{"inverted vertically", &CropRect{0, 0.9, 1, 0.1}, false},
		{"empty", &CropRect{0.5, 0.5, 0.5, 0.5}, false},
		{"outside unit square", &CropRect{-0.1, 0, 1, 1.2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.crop.Valid(); got != tt.expected {
				t.Errorf("Valid() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(float64) float64
		in       float64
		expected float64
	}{
		{"zoom above", ClampZoom, 10, 4.0},
		{"zoom below", ClampZoom, 0.1, 0.5},
		{"zoom inside", ClampZoom, 2, 2},
		{"brightness above", ClampBrightness, 5, 1.0},
		{"brightness below", ClampBrightness, -5, -1.0},
		{"brightness inside", ClampBrightness, 0.3, 0.3},
		{"font size above", ClampFontSize, 40, 28},
		{"font size below", ClampFontSize, 4, 12},
		{"zoom NaN", ClampZoom, math.NaN(), 0.5},
		{"brightness NaN", ClampBrightness, math.NaN(), -1.0},
		{"zoom +Inf", ClampZoom, math.Inf(1), 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.expected {
				t.Errorf("clamp(%v) = %v, expected %v", tt.in, got, tt.expected)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"photo", ModePhoto, false},
		{"PHOTO", ModePhoto, false},
		{" Text ", ModeText, false},
		{"video", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModeToggle(t *testing.T) {
	if ModePhoto.Toggle() != ModeText {
		t.Error("PHOTO should toggle to TEXT")
	}
	if ModeText.Toggle() != ModePhoto {
		t.Error("TEXT should toggle to PHOTO")
	}
}
