package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	arrow         = "⮩"
	defaultIndent = 4
)

// RenderOptions controls the human-readable tree output.
type RenderOptions struct {
	// Color enables ANSI colouring regardless of terminal detection.
	Color bool
	// Indent is the number of spaces per depth level. Defaults to 4.
	Indent int
}

// Render writes n as an indented tree: a header line per mapping and a
// "key = value" line per leaf. It returns the first write error.
func Render(w io.Writer, n Node, opts RenderOptions) error {
	if opts.Indent <= 0 {
		opts.Indent = defaultIndent
	}
	r := &renderer{w: w, indent: opts.Indent}
	if opts.Color {
		r.arrow = colorize(color.FgCyan)
		r.key = colorize(color.Bold)
		r.value = colorize(color.FgGreen)
	} else {
		r.arrow, r.key, r.value = fmt.Sprint, fmt.Sprint, fmt.Sprint
	}
	Walk(n, r)
	return r.err
}

func colorize(attr color.Attribute) func(a ...interface{}) string {
	c := color.New(attr)
	c.EnableColor()
	return c.SprintFunc()
}

type renderer struct {
	w      io.Writer
	indent int
	err    error

	arrow, key, value func(a ...interface{}) string
}

func (r *renderer) Leaf(_ []string, key string, value Scalar, depth int) {
	r.line(depth, fmt.Sprintf("%s %s = %s", r.arrow(arrow), r.key(key), r.value(value.Value)))
}

func (r *renderer) Enter(_ []string, key string, depth int) {
	r.line(depth, fmt.Sprintf("%s %s", r.arrow(arrow), r.key(key)))
}

func (r *renderer) Empty(path []string, key string) {
	warnEmpty(path, key)
}

func (r *renderer) line(depth int, text string) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, "%s%s\n", strings.Repeat(" ", depth*r.indent), text)
}
