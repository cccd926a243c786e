package stats

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/rossmatican/thoughtleaderai/internal/pattern"
)

var intensityColors = map[pattern.Intensity]*color.Color{
	pattern.IntensityCritical: color.New(color.FgRed),
	pattern.IntensityWarning:  color.New(color.FgYellow),
	pattern.IntensityCaution:  color.New(color.FgCyan),
	pattern.IntensityGood:     color.New(color.FgGreen),
}

// UseColor reports whether output to w should carry ANSI colors.
// NO_COLOR always wins; force enables color for non-terminal writers.
func UseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// ColorScore wraps a rendered cognitive score in its intensity color.
func ColorScore(text string, cognitive int, useColor bool) string {
	if !useColor {
		return text
	}
	c := *intensityColors[pattern.IntensityOf(cognitive)]
	c.EnableColor()
	return c.Sprint(text)
}
