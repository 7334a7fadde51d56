package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/rwerr"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	labelStyle  = color.New(color.FgCyan, color.Bold)
	errorStyle  = color.New(color.FgRed, color.Bold)
	deleteStyle = color.New(color.FgRed)
	insertStyle = color.New(color.FgGreen)
)

// useColor resolves the --color flag for w: "auto" colors terminals only
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func setColor(enabled bool) {
	for _, style := range []*color.Color{labelStyle, errorStyle, deleteStyle, insertStyle} {
		if enabled {
			style.EnableColor()
		} else {
			style.DisableColor()
		}
	}
}

type printer struct {
	out, errOut io.Writer
	diff        bool
	// labels prefixes every line with the input label
	labels bool
}

func (p printer) print(outputs []Output) {
	for _, o := range outputs {
		if o.Err != nil {
			_, _ = fmt.Fprintf(p.errOut, "%s %s %s\n", labelStyle.Sprint(o.Label+":"), errorStyle.Sprint("error:"), rwerr.FormatWithCode(o.Err))
			continue
		}
		if p.labels {
			_, _ = fmt.Fprint(p.out, labelStyle.Sprint(o.Label+":")+" ")
		}
		if p.diff {
			_, _ = fmt.Fprintln(p.out, inlineDiff(o.Parsed.String(), o.Result.String()))
			continue
		}
		if err := expr.Print(p.out, o.Result); err != nil {
			logger.Warn("writing result failed", "label", o.Label, "error", err)
			continue
		}
		_, _ = fmt.Fprintln(p.out)
	}
}

// inlineDiff marks removed text as [-text-] and added text as {+text+}
func inlineDiff(from, to string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))
	sb := &strings.Builder{}
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffpatch.DiffDelete:
			sb.WriteString(deleteStyle.Sprint("[-" + d.Text + "-]"))
		case diffpatch.DiffInsert:
			sb.WriteString(insertStyle.Sprint("{+" + d.Text + "+}"))
		}
	}
	return sb.String()
}
