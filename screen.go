package main

const (
	// Default editor window dimensions
	DefaultWindowWidth  = 420
	DefaultWindowHeight = 720
	MinWindowWidth      = 320
	MinWindowHeight     = 480
)

// GetWindowDimensions returns the editor window width and height based on
// config and hardcoded defaults, never below the minimum size
func GetWindowDimensions(config Config) (width, height int) {
	width = DefaultWindowWidth
	height = DefaultWindowHeight

	if config.WindowWidth > 0 {
		width = config.WindowWidth
	}
	if config.WindowHeight > 0 {
		height = config.WindowHeight
	}

	if width < MinWindowWidth {
		width = MinWindowWidth
	}
	if height < MinWindowHeight {
		height = MinWindowHeight
	}

	return width, height
}

// windowTitle returns the editor window title for the initial surface
func windowTitle(launch EditorLaunch) string {
	if launch.Mode == ModeText {
		return "Text note"
	}
	return "Photo note"
}
