package main

import (
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
)

//go:embed frontend/*
var assets embed.FS

const Version = "1.0.0"

var (
	modeArg     string
	toggle      bool
	edit        bool
	show        bool
	photoArg    string
	noteArg     string
	tileWidth   int
	showVersion bool
	internalGUI bool // Hidden flag: run as GUI subprocess
)

func init() {
	flag.StringVarP(&modeArg, "mode", "m", "", "Editor surface to open: photo or text")
	flag.BoolVar(&toggle, "toggle", false, "Toggle the widget between photo and text")
	flag.BoolVar(&show, "show", false, "Print the widget tile")
	flag.BoolVar(&edit, "edit", false, "Open the editor on the widget's current mode")
	flag.StringVar(&photoArg, "photo", "", "Set the widget photo from a file path or file:// URL")
	flag.StringVar(&noteArg, "note", "", "Set the note text ('-' reads stdin)")
	flag.IntVar(&tileWidth, "width", 32, "Tile width for --show")
	flag.BoolVarP(&showVersion, "version", "v", false, "Show version")
	flag.BoolVar(&internalGUI, "internal-gui", false, "Internal: run as GUI subprocess")
	flag.CommandLine.MarkHidden("internal-gui")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("photowidget %s\n", Version)
		os.Exit(0)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	config := LoadConfig()
	repo := NewWidgetRepository(NewFilePreferences(config.DataDir), config.DataDir)
	defer repo.Close()

	launch := EditorLaunch{Mode: config.InitialMode()}
	if modeArg != "" {
		mode, err := ParseMode(modeArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		launch.Mode = mode
	}

	ctx := context.Background()

	if edit && !flag.CommandLine.Changed("mode") {
		launch = OpenEditorFor(repo.Read(ctx))
	}

	if internalGUI {
		runGUI(repo, config, launch)
		return
	}

	if toggle || show || photoArg != "" || flag.CommandLine.Changed("note") {
		if err := runWidgetAction(ctx, repo, config, launch); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Hand the request to a running editor if there is one
	if TrySendOpen(launch) {
		os.Exit(0)
	}

	if err := spawnGUIBackground(launch); err != nil {
		fmt.Fprintf(os.Stderr, "Error spawning GUI: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// runWidgetAction performs the headless widget operations given on the command line
func runWidgetAction(ctx context.Context, repo *WidgetRepository, config Config, launch EditorLaunch) error {
	if photoArg != "" || flag.CommandLine.Changed("note") {
		session := NewSession(repo)
		session.Load(ctx)
		if flag.CommandLine.Changed("mode") {
			session.SetMode(launch.Mode)
		}
		if photoArg != "" {
			ref, err := photoReference(photoArg)
			if err != nil {
				return err
			}
			session.SetPhotoPath(ref)
		}
		if flag.CommandLine.Changed("note") {
			text, err := noteText(noteArg, os.Stdin)
			if err != nil {
				return err
			}
			session.UpdateTextContent(text)
		}
		if err := session.Save(ctx); err != nil {
			return err
		}
		if saved := repo.Read(ctx); photoArg != "" && !saved.HasPhoto() {
			fmt.Fprintf(os.Stderr, "Warning: photo %s could not be copied and was not saved\n", photoArg)
		}
		NotifyEditor()
	}

	if toggle {
		state, err := ToggleMode(ctx, repo)
		if err != nil {
			return err
		}
		NotifyEditor()
		fmt.Printf("mode: %s\n", strings.ToLower(string(state.Mode)))
	}

	if show {
		fmt.Println(RenderTile(Summarize(repo.Read(ctx), config.PreviewLength), tileWidth))
	}
	return nil
}

// photoReference turns a command-line photo argument into an external reference.
// Plain paths become file:// URLs so the repository copies them into its own storage.
func photoReference(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("error resolving path: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// noteText returns arg, or the contents of stdin when arg is "-"
func noteText(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	content, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("error reading stdin: %w", err)
	}
	return strings.TrimRight(string(content), "\n"), nil
}

// spawnGUIBackground spawns the editor as a background process and waits for its socket
func spawnGUIBackground(launch EditorLaunch) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(exe, "--internal-gui", "--mode", launch.Arg())
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // Create new session so child survives parent exit
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start GUI process: %w", err)
	}

	socketPath := getEditorSocketPath()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	return fmt.Errorf("timeout waiting for GUI to start")
}

// runGUI runs the editor window (called from GUI subprocess)
func runGUI(repo *WidgetRepository, config Config, launch EditorLaunch) {
	app := NewEditorApp(repo, config, launch)
	width, height := GetWindowDimensions(config)

	ipcServer, err := StartEditorServer(app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not start IPC server: %v\n", err)
	}

	err = wails.Run(&options.App{
		Title:     windowTitle(launch),
		Width:     width,
		Height:    height,
		MinWidth:  MinWindowWidth,
		MinHeight: MinWindowHeight,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: NewPhotoHandler(repo),
		},
		OnStartup: app.startup,
		OnShutdown: func(ctx context.Context) {
			app.shutdown(ctx)
			if ipcServer != nil {
				ipcServer.Close()
			}
		},
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar:             mac.TitleBarDefault(),
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
		},
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
