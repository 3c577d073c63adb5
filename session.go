package main

import (
	"context"
	"sync"
)

// SessionState is a snapshot of an editing session
type SessionState struct {
	State     WidgetState `json:"state"`
	IsLoading bool        `json:"isLoading"`
	IsSaving  bool        `json:"isSaving"`
	LastError string      `json:"lastError,omitempty"`
}

// PhotoTransform is a partial update of the photo framing. Nil fields keep
// their current value; ClearCrop resets the crop to the full image.
type PhotoTransform struct {
	Zoom       *float64  `json:"zoom,omitempty"`
	OffsetX    *float64  `json:"offsetX,omitempty"`
	OffsetY    *float64  `json:"offsetY,omitempty"`
	Brightness *float64  `json:"brightness,omitempty"`
	Crop       *CropRect `json:"crop,omitempty"`
	ClearCrop  bool      `json:"clearCrop,omitempty"`
}

// TextStyleUpdate is a partial update of the text style. Nil fields keep their current value.
type TextStyleUpdate struct {
	FontKey    *string        `json:"fontKey,omitempty"`
	IsBold     *bool          `json:"isBold,omitempty"`
	Alignment  *TextAlignment `json:"alignment,omitempty"`
	FontSizeSp *float64       `json:"fontSizeSp,omitempty"`
}

// Session is the in-memory working copy of the widget state being edited.
// It is meant to have a single owner; the lock only keeps snapshots consistent.
type Session struct {
	repo Repository

	mu        sync.Mutex
	working   WidgetState
	isLoading bool
	isSaving  bool
	lastError string
	listeners []func(SessionState)
}

// NewSession creates a session holding the default state until Load completes
func NewSession(repo Repository) *Session {
	return &Session{
		repo:      repo,
		working:   DefaultWidgetState(),
		isLoading: true,
	}
}

// OnChange registers fn to be called with a snapshot after every change
func (s *Session) OnChange(fn func(SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current session state
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() SessionState {
	return SessionState{
		State:     s.working,
		IsLoading: s.isLoading,
		IsSaving:  s.isSaving,
		LastError: s.lastError,
	}
}

// mutate runs fn with the lock held and notifies listeners afterwards
func (s *Session) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := append([]func(SessionState){}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// edit applies transform to the working state and clears the last error
func (s *Session) edit(transform func(*WidgetState)) {
	s.mutate(func() {
		transform(&s.working)
		s.lastError = ""
	})
}

// Load replaces the working state with the persisted one.
// A cancelled context leaves the default working state and records the error.
func (s *Session) Load(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		s.mutate(func() {
			s.isLoading = false
			s.lastError = errorMessage(err, "Failed to load note")
		})
		return
	}
	state := s.repo.Read(ctx)
	s.mutate(func() {
		s.isLoading = false
		s.working = state
		s.lastError = ""
	})
}

func (s *Session) SetMode(mode Mode) {
	s.edit(func(w *WidgetState) { w.Mode = mode })
}

// Toggle flips the working mode
func (s *Session) Toggle() {
	s.edit(func(w *WidgetState) { w.Mode = w.Mode.Toggle() })
}

// SetPhotoPath sets the photo reference; external references are resolved on save
func (s *Session) SetPhotoPath(ref string) {
	s.edit(func(w *WidgetState) { w.Photo.Path = ref })
}

// UpdatePhotoTransform merges t into the photo state, clamping zoom and brightness.
// NaN and infinite values leave the current field unchanged.
func (s *Session) UpdatePhotoTransform(t PhotoTransform) {
	s.edit(func(w *WidgetState) {
		p := &w.Photo
		if t.Zoom != nil && finite(*t.Zoom) {
			p.Zoom = ClampZoom(*t.Zoom)
		}
		if t.OffsetX != nil && finite(*t.OffsetX) {
			p.OffsetX = *t.OffsetX
		}
		if t.OffsetY != nil && finite(*t.OffsetY) {
			p.OffsetY = *t.OffsetY
		}
		if t.Brightness != nil && finite(*t.Brightness) {
			p.Brightness = ClampBrightness(*t.Brightness)
		}
		switch {
		case t.ClearCrop:
			p.Crop = nil
		case t.Crop != nil && finiteCrop(*t.Crop):
			crop := *t.Crop
			p.Crop = &crop
		}
	})
}

func finiteCrop(c CropRect) bool {
	return finite(c.Left) && finite(c.Top) && finite(c.Right) && finite(c.Bottom)
}

// ResetPhotoTransform restores the default framing, keeping the selected photo
func (s *Session) ResetPhotoTransform() {
	s.edit(func(w *WidgetState) {
		path := w.Photo.Path
		w.Photo = DefaultPhotoState()
		w.Photo.Path = path
	})
}

// UpdateTextContent replaces the note text verbatim
func (s *Session) UpdateTextContent(text string) {
	s.edit(func(w *WidgetState) { w.Text.Content = text })
}

// UpdateTextStyle merges u into the text style
func (s *Session) UpdateTextStyle(u TextStyleUpdate) {
	s.edit(func(w *WidgetState) {
		st := &w.Text.Style
		if u.FontKey != nil {
			st.FontKey = *u.FontKey
		}
		if u.IsBold != nil {
			st.IsBold = *u.IsBold
		}
		if u.Alignment != nil {
			st.Alignment = *u.Alignment
		}
		if u.FontSizeSp != nil && finite(*u.FontSizeSp) {
			st.FontSizeSp = ClampFontSize(*u.FontSizeSp)
		}
	})
}

// ResetText restores the default note, content included
func (s *Session) ResetText() {
	s.edit(func(w *WidgetState) { w.Text = DefaultTextState() })
}

// Save commits the working state. On failure the working state is kept so the save can be retried.
func (s *Session) Save(ctx context.Context) error {
	var state WidgetState
	s.mutate(func() {
		state = s.working
		s.isSaving = true
		s.lastError = ""
	})

	err := s.repo.Write(ctx, state)

	s.mutate(func() {
		s.isSaving = false
		if err != nil {
			s.lastError = errorMessage(err, "Failed to save note")
		}
	})
	return err
}

func errorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
