package logging_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datals/datals/internal/logging"
)

func TestModuleUsesContextLogger(t *testing.T) {
	var lines []string

	collect := logging.Printf(func(msg string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(msg, args...))
	})

	ctx := logging.WithLogger(context.Background(), collect)

	l := logging.Module("mod1")(ctx)
	l.Infof("hello %v", 42)
	l.Warnf("watch out")

	require.Equal(t, []string{
		"[mod1] hello 42",
		"[mod1] watch out",
	}, lines)
}

func TestModuleWithoutLoggerIsNull(t *testing.T) {
	l := logging.Module("mod1")(context.Background())

	// must not panic, output goes nowhere
	l.Debugf("a")
	l.Infof("b")
	l.Errorf("c")
}

func TestWithLoggerNilInstallsNull(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), nil)

	l := logging.Module("mod1")(ctx)
	l.Infof("discarded")
}
