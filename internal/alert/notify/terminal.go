package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/mqasimca/nvctl/internal/alert"
	"github.com/mattn/go-isatty"
)

const (
	ansiReset   = "\x1b[0m"
	ansiYellow  = "\x1b[33m"
	ansiRed     = "\x1b[31m"
	ansiMagenta = "\x1b[35m"
	ansiBlue    = "\x1b[34m"
)

// Terminal formats alerts as `[HH:MM:SS] SEVERITY GPU <n>: <message>`,
// colored with ANSI escapes when writing to a TTY-capable terminal.
type Terminal struct {
	out   io.Writer
	color bool
}

// NewTerminal wraps out, auto-detecting TTY support when out is an *os.File
// via go-isatty the way the rest of this codebase's console writers do.
func NewTerminal(out io.Writer) *Terminal {
	color := false

	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &Terminal{out: out, color: color}
}

func (t *Terminal) Name() string { return "terminal" }

func (t *Terminal) Notify(a alert.Alert) error {
	line := fmt.Sprintf("[%s] %s GPU %d: %s",
		a.StartedAt.Format("15:04:05"), severityLabel(a.Severity), a.GpuIndex, a.Message)

	if t.color {
		line = severityColor(a.Severity) + line + ansiReset
	}

	_, err := fmt.Fprintln(t.out, line)

	return err
}

func severityLabel(s alert.Severity) string {
	switch s {
	case alert.SeverityInfo:
		return "INFO"
	case alert.SeverityWarning:
		return "WARNING"
	case alert.SeverityCritical:
		return "CRITICAL"
	case alert.SeverityEmergency:
		return "EMERGENCY"
	default:
		return "UNKNOWN"
	}
}

func severityColor(s alert.Severity) string {
	switch s {
	case alert.SeverityInfo:
		return ansiBlue
	case alert.SeverityWarning:
		return ansiYellow
	case alert.SeverityCritical:
		return ansiRed
	case alert.SeverityEmergency:
		return ansiMagenta
	default:
		return ansiReset
	}
}
