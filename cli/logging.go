package cli

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/datals/datals/internal/logging"
)

var logLevels = []string{"debug", "info", "warning", "error"}

// loggingFlags configure the console logging backend.
type loggingFlags struct {
	logLevel     string
	forceColor   bool
	disableColor bool

	app *App
}

func (c *loggingFlags) setup(app *App, cmd *kingpin.Application) {
	cmd.Flag("log-level", "Console log level").Default("warning").EnumVar(&c.logLevel, logLevels...)
	cmd.Flag("force-color", "Force color output").Hidden().Envar("DATALS_FORCE_COLOR").BoolVar(&c.forceColor)
	cmd.Flag("disable-color", "Disable color output").Hidden().Envar("DATALS_DISABLE_COLOR").BoolVar(&c.disableColor)

	cmd.PreAction(c.initialize)
	c.app = app
}

// initialize builds the console logger just before the selected
// command runs, once all flags are known.
func (c *loggingFlags) initialize(_ *kingpin.ParseContext) error {
	ec := zapcore.EncoderConfig{
		LevelKey:         "l",
		MessageKey:       "m",
		NameKey:          "n",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	if c.colorEnabled() {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	rootLogger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(ec),
		zapcore.AddSync(c.app.stderr()),
		logLevelFromFlag(c.logLevel),
	))

	c.app.SetLoggerFactory(func(module string) logging.Logger {
		return rootLogger.Named(module).Sugar()
	})

	if c.forceColor {
		color.NoColor = false
	}

	if c.disableColor {
		color.NoColor = true
	}

	return nil
}

// colorEnabled decides whether log levels are colorized, honoring the
// explicit flags first and terminal detection otherwise.
func (c *loggingFlags) colorEnabled() bool {
	if c.disableColor {
		return false
	}

	if c.forceColor {
		return true
	}

	if f, ok := c.app.stderr().(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

func logLevelFromFlag(levelString string) zapcore.LevelEnabler {
	switch levelString {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.FatalLevel
	}
}
