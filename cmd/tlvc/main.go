package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/yzsnstotz/tlvc"
	"github.com/yzsnstotz/tlvc/fs"
	"github.com/yzsnstotz/tlvc/goquery"
	"github.com/yzsnstotz/tlvc/preprocess"
	tlvcslog "github.com/yzsnstotz/tlvc/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	var exit *exitError
	if err != nil && !errors.As(err, &exit) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(ExitCode(err))
}

// exitError ends the program with a specific exit code and no further
// message; the command has already reported the details.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode returns the process exit code err maps to.
func ExitCode(err error) int {
	var exit *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return exit.code
	default:
		return 1
	}
}

// Main represents the program.
type Main struct {
	// JSON configuration files consulted for flag defaults, in order.
	// Missing files are ignored. Set before calling Run().
	ConfigPaths []string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPaths: []string{"~/.config/tlvc/config.json", ".tlvc.json"},
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("tlvc"),
		kong.Description("Preprocess exported chat transcripts into ranked, redacted highlight candidates."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
		kong.Configuration(kong.JSON, m.ConfigPaths...),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'tlvc --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cli.LogLevel, cli.LogFormat)
	if err != nil {
		return err
	}
	logger = logger.With("run", uuid.NewString())

	profiles := fs.NewProfileLoader(cli.ProfilesDir)
	deps.Logger = logger
	deps.Profiles = profiles
	deps.Preprocessor = &preprocess.Preprocessor{
		Resolver:  tlvcslog.NewLoggingResolver(fs.NewResolver(), logger),
		Profiles:  tlvcslog.NewLoggingProfileLoader(profiles, logger),
		Extractor: tlvcslog.NewLoggingExtractor(goquery.NewExtractor(), logger),
		Detector:  goquery.NewDetector(),
	}
	deps.NewStore = func(dir string) tlvc.ArtifactStore {
		return tlvcslog.NewLoggingArtifactStore(fs.NewArtifactStore(dir), logger)
	}

	return kongCtx.Run(deps)
}
