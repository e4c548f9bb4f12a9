package cli

import "github.com/fatih/color"

var (
	pathColor    = color.New(color.FgBlue)
	okColor      = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgHiRed)
)

const (
	cleanMark = "✓"
	dirtyMark = "✗"
)
