// Package cli implements the command-line interface of datals.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/datals/datals/internal/logging"
)

// BuildVersion is overridden at link time on release builds.
var BuildVersion = "v0-unofficial"

// appServices is the interface commands use to reach application-level
// facilities.
type appServices interface {
	stdout() io.Writer
	stderr() io.Writer

	// action wraps a command body with context and logger setup.
	action(act func(ctx context.Context) error) func(*kingpin.ParseContext) error
}

// commandParent is anything a command can be registered under.
type commandParent interface {
	Command(name, help string) *kingpin.CmdClause
}

// App contains per-invocation flag and command state, so tests can run
// complete invocations side by side without shared globals.
type App struct {
	loggingFlags loggingFlags
	listCommand  commandList

	stdoutWriter io.Writer
	stderrWriter io.Writer

	loggerFactory logging.LoggerForModuleFunc
}

// NewApp returns an App bound to the process standard streams.
func NewApp() *App {
	return newApp(os.Stdout, os.Stderr)
}

func newApp(stdout, stderr io.Writer) *App {
	return &App{
		stdoutWriter: stdout,
		stderrWriter: stderr,
	}
}

// Attach registers all commands and application-level flags.
func (a *App) Attach(app *kingpin.Application) {
	a.loggingFlags.setup(a, app)
	a.listCommand.setup(a, app)
}

// SetLoggerFactory sets the factory producing module loggers for
// command contexts.
func (a *App) SetLoggerFactory(f logging.LoggerForModuleFunc) {
	a.loggerFactory = f
}

func (a *App) stdout() io.Writer {
	return a.stdoutWriter
}

func (a *App) stderr() io.Writer {
	return a.stderrWriter
}

func (a *App) action(act func(ctx context.Context) error) func(*kingpin.ParseContext) error {
	return func(_ *kingpin.ParseContext) error {
		ctx := logging.WithLogger(context.Background(), a.loggerFactory)

		return act(ctx)
	}
}
