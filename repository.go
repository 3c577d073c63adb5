package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// stateKey is the single preference slot holding the encoded WidgetState
	stateKey      = "photo_widget_state"
	photoDirName  = "photo_widget"
	photoFileName = "photo.jpg"
)

// ErrUnsupportedSource is returned by the default opener for references it cannot open
var ErrUnsupportedSource = errors.New("unsupported photo source")

// Repository reads and writes the widget state
type Repository interface {
	// Read returns the persisted state, or the default state if there is none or it is corrupt
	Read(ctx context.Context) WidgetState
	// Write persists state, copying an external photo reference into local storage first
	Write(ctx context.Context, state WidgetState) error
	// Subscribe streams the current state followed by every saved state
	Subscribe(ctx context.Context) (<-chan WidgetState, func())
	// Refresh re-reads the store and publishes the result to subscribers
	Refresh(ctx context.Context)
}

// SourceOpener opens an external photo reference for reading
type SourceOpener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// SourceOpenerFunc adapts a function to SourceOpener
type SourceOpenerFunc func(ctx context.Context, ref string) (io.ReadCloser, error)

func (f SourceOpenerFunc) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return f(ctx, ref)
}

// OpenFileURL opens file:// references; every other scheme is unsupported
func OpenFileURL(ctx context.Context, ref string) (io.ReadCloser, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid photo reference %q: %w", ref, err)
	}
	if u.Scheme != "file" || u.Path == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, ref)
	}
	return os.Open(u.Path)
}

// RepositoryOption configures a WidgetRepository
type RepositoryOption func(*WidgetRepository)

// WithSourceOpener replaces the opener used for external photo references
func WithSourceOpener(opener SourceOpener) RepositoryOption {
	return func(r *WidgetRepository) {
		if opener != nil {
			r.opener = opener
		}
	}
}

// WidgetRepository stores the whole WidgetState as one JSON blob in a PreferenceStore.
// Photos are copied to <dataDir>/photo_widget/photo.jpg so the renderer can
// always read them by a stable local path.
type WidgetRepository struct {
	store   PreferenceStore
	dataDir string
	opener  SourceOpener
	stream  *Broadcaster[WidgetState]
	writeMu sync.Mutex
}

// NewWidgetRepository creates a repository over store that owns photo copies under dataDir
func NewWidgetRepository(store PreferenceStore, dataDir string, opts ...RepositoryOption) *WidgetRepository {
	if abs, err := filepath.Abs(dataDir); err == nil {
		dataDir = abs
	}
	r := &WidgetRepository{
		store:   store,
		dataDir: dataDir,
		opener:  SourceOpenerFunc(OpenFileURL),
		stream:  NewBroadcaster[WidgetState](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PhotoPath returns the fixed location of the owned photo copy
func (r *WidgetRepository) PhotoPath() string {
	return filepath.Join(r.dataDir, photoDirName, photoFileName)
}

// Read returns the persisted state. It never fails.
func (r *WidgetRepository) Read(ctx context.Context) WidgetState {
	raw, ok, err := r.store.Get(stateKey)
	if err != nil {
		slog.Warn("widget state unreadable, using defaults", "err", err)
		return DefaultWidgetState()
	}
	if !ok {
		return DefaultWidgetState()
	}
	state, err := DecodeState(raw)
	if err != nil {
		slog.Warn("widget state corrupt, using defaults", "err", err)
		return DefaultWidgetState()
	}
	return state
}

// Write persists state and publishes it. A photo that cannot be copied is
// dropped from the stored record without failing the write.
func (r *WidgetRepository) Write(ctx context.Context, state WidgetState) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	state.Photo.Path = r.resolvePhoto(ctx, state.Photo.Path)

	encoded, err := EncodeState(state)
	if err != nil {
		return err
	}
	if err := r.store.Set(stateKey, encoded); err != nil {
		return fmt.Errorf("failed to save widget state: %w", err)
	}
	r.stream.Publish(state)
	return nil
}

// Subscribe streams the current persisted state followed by every later write.
// The channel closes when ctx is done or cancel is called.
func (r *WidgetRepository) Subscribe(ctx context.Context) (<-chan WidgetState, func()) {
	if _, ok := r.stream.Latest(); !ok {
		r.stream.Publish(r.Read(ctx))
	}
	ch, cancel := r.stream.Subscribe()
	stop := context.AfterFunc(ctx, cancel)
	return ch, func() {
		stop()
		cancel()
	}
}

// Refresh publishes the currently stored state, picking up writes made by other processes
func (r *WidgetRepository) Refresh(ctx context.Context) {
	r.stream.Publish(r.Read(ctx))
}

// Close ends every subscription
func (r *WidgetRepository) Close() {
	r.stream.Close()
}

// isLocalPath reports whether ref is already an app-owned filesystem path
func isLocalPath(ref string) bool {
	return strings.HasPrefix(ref, "/")
}

func (r *WidgetRepository) resolvePhoto(ctx context.Context, ref string) string {
	if strings.TrimSpace(ref) == "" {
		return ""
	}
	if isLocalPath(ref) {
		return ref
	}
	path, err := r.copyPhoto(ctx, ref)
	if err != nil {
		slog.Warn("dropping photo reference", "ref", ref, "err", err)
		return ""
	}
	return path
}

// copyPhoto copies ref over the owned photo file, replacing any previous copy
func (r *WidgetRepository) copyPhoto(ctx context.Context, ref string) (string, error) {
	src, err := r.opener.Open(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer src.Close()

	dest := r.PhotoPath()
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create photo directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+photoFileName+"-"+uuid.NewString()+".tmp")
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to copy photo: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to close photo file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to replace photo file: %w", err)
	}
	return dest, nil
}
