package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spaceai/spaceai/internal/config"
	"github.com/spaceai/spaceai/internal/display"
	"github.com/spaceai/spaceai/internal/keys"
	"github.com/spaceai/spaceai/internal/logging"
	"github.com/spaceai/spaceai/internal/prompts"
	"github.com/spaceai/spaceai/internal/provider"
	"github.com/spaceai/spaceai/internal/provider/gemini"
	"github.com/spaceai/spaceai/internal/repl"
	"github.com/spaceai/spaceai/internal/security"
	"github.com/spaceai/spaceai/internal/session"
	"github.com/spaceai/spaceai/internal/state"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagResolution string
	flagAspect     string
	flagOutput     string
	flagAPIKey     string
	flagConfig     string
	flagLogLevel   string
	flagShow       bool
)

type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	NewProvider func(ctx context.Context, cfg *provider.Config, log *zap.Logger) (provider.Provider, error)
	NewPrompts  func(dataDir string) (*prompts.Store, error)
	NewLogger   func(path, level string) (*zap.Logger, error)
}

func DefaultApp() *App {
	return &App{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		NewProvider: func(ctx context.Context, cfg *provider.Config, log *zap.Logger) (provider.Provider, error) {
			return gemini.New(ctx, cfg, log)
		},
		NewPrompts: func(dataDir string) (*prompts.Store, error) {
			return prompts.NewStoreWithPath(filepath.Join(dataDir, "history.db"))
		},
		NewLogger: logging.New,
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := DefaultApp()
	rootCmd := newRootCmd(app)
	return rootCmd.Execute()
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spaceai [prompt]",
		Short: "Generate, edit and upscale images with Gemini",
		Long: `spaceai is a mission console for Gemini image generation.

With no arguments it starts the interactive console: generate images,
chain edits on a selected image, and upscale to 4K. With a prompt it
runs a single generation and saves the result.

Examples:
  spaceai
  spaceai "a nebula over a frozen ocean"
  spaceai -r 4K -a 16:9 -o nebula.png "a nebula over a frozen ocean"`,
		Args:    cobra.MaximumNArgs(1),
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, app)
		},
	}

	cmd.Flags().StringVarP(&flagResolution, "resolution", "r", "", "output resolution (1K, 2K, 4K)")
	cmd.Flags().StringVarP(&flagAspect, "aspect", "a", "", "aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output filename for one-shot generation")
	cmd.Flags().StringVar(&flagAPIKey, "api-key", "", fmt.Sprintf("API key (defaults to stored key or %s)", keys.EnvVar))
	cmd.Flags().StringVar(&flagConfig, "config", "", "path to config file")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&flagShow, "show", false, "display the image inline even if terminal detection fails")

	return cmd
}

func runRoot(_ *cobra.Command, args []string, app *App) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	config.LoadDotenv()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagResolution != "" {
		cfg.Resolution = strings.ToUpper(flagResolution)
	}
	if flagAspect != "" {
		cfg.AspectRatio = flagAspect
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	resolution := state.Resolution(cfg.Resolution)
	if !resolution.IsValid() {
		return fmt.Errorf("invalid resolution %q: must be one of %v", cfg.Resolution, state.ValidResolutions())
	}
	aspect := state.AspectRatio(cfg.AspectRatio)
	if !aspect.IsValid() {
		return fmt.Errorf("invalid aspect ratio %q: must be one of %v", cfg.AspectRatio, state.ValidAspectRatios())
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir, err = prompts.DefaultDataDir()
		if err != nil {
			return fmt.Errorf("failed to resolve data directory: %w", err)
		}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	log, err := app.NewLogger(filepath.Join(dataDir, "spaceai.log"), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	promptStore, err := app.NewPrompts(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open prompt history: %w", err)
	}
	defer promptStore.Close()

	workspace, err := session.NewWorkspace(filepath.Join(dataDir, "images"))
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	manager := session.NewManager(&session.Config{
		Prompts:     promptStore,
		Workspace:   workspace,
		Log:         log,
		Resolution:  resolution,
		AspectRatio: aspect,
	})

	keyStore, err := keys.NewStore()
	if err != nil {
		log.Warn("key store unavailable", zap.Error(err))
	}

	// connect resolves the current key into a fresh provider. Run
	// after every key selection, including re-selection on expiry.
	connect := func(ctx context.Context) error {
		key, source, err := keys.Resolve(flagAPIKey, keyStore)
		if err != nil {
			return err
		}
		prov, err := app.NewProvider(ctx, &provider.Config{
			APIKey:     key,
			FlashModel: cfg.FlashModel,
			ProModel:   cfg.ProModel,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create provider: %w", err)
		}
		manager.SetProvider(prov)
		manager.ConfirmCredential()
		log.Info("provider ready", zap.String("key_source", source))
		return nil
	}

	if err := manager.LoadPromptHistory(ctx); err != nil {
		log.Warn("prompt history unavailable", zap.Error(err))
	}

	if len(args) > 0 {
		return runOneShot(ctx, args[0], app, manager, connect)
	}

	var displayer *display.Displayer
	if flagShow || display.Supported() {
		displayer = display.New(app.Out)
	}

	selector := keys.DetectSelector(keyStore, app.In, app.Out, flagAPIKey)
	if ok, _ := selector.HasCredential(ctx); ok {
		if err := connect(ctx); err != nil {
			fmt.Fprintf(app.Err, "Warning: %v\n", err)
		}
	}

	console := repl.New(&repl.Config{
		In:        app.In,
		Out:       app.Out,
		Err:       app.Err,
		Manager:   manager,
		Selector:  selector,
		Connect:   connect,
		Displayer: displayer,
	})
	return console.Run(ctx)
}

// runOneShot generates a single image and saves it without entering
// the console.
func runOneShot(ctx context.Context, prompt string, app *App, manager *session.Manager, connect func(context.Context) error) error {
	if err := connect(ctx); err != nil {
		return err
	}

	st := manager.Snapshot()
	fmt.Fprintf(app.Out, "Generating (%s, %s)...\n", st.Resolution, st.AspectRatio)

	if err := manager.Generate(ctx, prompt); err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	dest := flagOutput
	if dest != "" {
		if err := security.ValidateExportPath(dest); err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
	}
	path, err := manager.Export(dest)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Saved: %s\n", path)
	return nil
}
