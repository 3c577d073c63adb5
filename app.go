package main

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Frontend event names
const (
	eventSessionChanged = "session-changed"
	eventWidgetState    = "widget-state"
)

// widgetStateEvent is the payload of the widget-state event
type widgetStateEvent struct {
	State   WidgetState   `json:"state"`
	Summary WidgetSummary `json:"summary"`
}

// EditorApp binds the editing session to the editor window
type EditorApp struct {
	ctx     context.Context
	repo    Repository
	session *Session
	config  Config
	launch  EditorLaunch

	mu           sync.Mutex
	emit         func(name string, data interface{})
	show         func()
	cancelStream func()
	stopped      bool
}

// NewEditorApp creates the editor bridge for repo, opening on launch.Mode
func NewEditorApp(repo Repository, config Config, launch EditorLaunch) *EditorApp {
	a := &EditorApp{
		repo:    repo,
		session: NewSession(repo),
		config:  config,
		launch:  launch,
	}
	a.session.OnChange(func(s SessionState) {
		a.send(eventSessionChanged, s)
	})
	return a
}

// startup is called when the app starts
func (a *EditorApp) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.emit = func(name string, data interface{}) {
		runtime.EventsEmit(ctx, name, data)
	}
	a.show = func() {
		runtime.WindowUnminimise(ctx)
		runtime.WindowShow(ctx)
	}
	a.mu.Unlock()

	go a.begin(ctx)
}

// shutdown is called when the window closes
func (a *EditorApp) shutdown(ctx context.Context) {
	a.mu.Lock()
	cancel := a.cancelStream
	a.cancelStream = nil
	a.stopped = true
	a.emit = nil
	a.show = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// begin loads the session, applies the requested mode and forwards
// committed state changes to the frontend until ctx is done or the app shuts down
func (a *EditorApp) begin(ctx context.Context) {
	a.session.Load(ctx)
	a.session.SetMode(a.launch.Mode)

	updates, cancel := a.repo.Subscribe(ctx)
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		cancel()
		return
	}
	a.cancelStream = cancel
	a.mu.Unlock()

	for state := range updates {
		a.send(eventWidgetState, widgetStateEvent{
			State:   state,
			Summary: Summarize(state, a.config.PreviewLength),
		})
	}
}

func (a *EditorApp) send(name string, data interface{}) {
	a.mu.Lock()
	emit := a.emit
	a.mu.Unlock()
	if emit != nil {
		emit(name, data)
	}
}

// OpenEditor switches to the requested surface and raises the window
func (a *EditorApp) OpenEditor(launch EditorLaunch) {
	a.session.SetMode(launch.Mode)
	a.mu.Lock()
	show := a.show
	a.mu.Unlock()
	if show != nil {
		show()
	}
}

// RefreshState re-reads the store after another process wrote it
func (a *EditorApp) RefreshState() {
	a.repo.Refresh(context.Background())
}

// GetSession returns the current editing session
func (a *EditorApp) GetSession() SessionState {
	return a.session.Snapshot()
}

// GetWidgetSummary returns what the widget currently shows for the saved state
func (a *EditorApp) GetWidgetSummary() WidgetSummary {
	return Summarize(a.repo.Read(context.Background()), a.config.PreviewLength)
}

// GetFontKeys returns the selectable font families
func (a *EditorApp) GetFontKeys() []string {
	return append([]string(nil), KnownFontKeys...)
}

// SetMode selects the editing surface ("photo" or "text")
func (a *EditorApp) SetMode(mode string) error {
	m, err := ParseMode(mode)
	if err != nil {
		return err
	}
	a.session.SetMode(m)
	return nil
}

func (a *EditorApp) SetPhotoPath(ref string) {
	a.session.SetPhotoPath(ref)
}

func (a *EditorApp) UpdatePhotoTransform(t PhotoTransform) {
	a.session.UpdatePhotoTransform(t)
}

func (a *EditorApp) ResetPhotoTransform() {
	a.session.ResetPhotoTransform()
}

func (a *EditorApp) UpdateTextContent(text string) {
	a.session.UpdateTextContent(text)
}

func (a *EditorApp) UpdateTextStyle(u TextStyleUpdate) {
	a.session.UpdateTextStyle(u)
}

func (a *EditorApp) ResetText() {
	a.session.ResetText()
}

// Save commits the working state and returns the resulting session.
// The frontend reads LastError to decide whether to close the editor.
func (a *EditorApp) Save() SessionState {
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	_ = a.session.Save(ctx)
	return a.session.Snapshot()
}

// GetConfig returns the application configuration
func (a *EditorApp) GetConfig() Config {
	return a.config
}
