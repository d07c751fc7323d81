// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	handlerIndent = 4  // spaces to indent handler entries
	endpointWidth = 35 // Base width for endpoint
	lineWidth     = 12 // Width for line column
	statusWidth   = 15 // Width for status text
)

// 🎯 HandlerOperation represents one guarded handler for logging
type HandlerOperation struct {
	Line     int    // Line of the guard in the target
	Endpoint string // Endpoint of the fetch call, may be empty
	Shape    string // Shape reported by the scanner
	Status   string // What happened to the handler
}

// 📦 RunOperation represents one migration run for logging
type RunOperation struct {
	Target string // File being migrated
	DryRun bool   // Whether changes are only previewed
}

// 📊 SummaryRow is one line of the end-of-run table
type SummaryRow struct {
	Label string
	Count int
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *RunOperation
	handlers  []HandlerOperation
}

// 🏭 New creates a console logger. Every console line is mirrored to zlog at debug level.
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatHandler formats a handler operation for display
func (l *Logger) formatHandler(op HandlerOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Status {
	case "rewritten":
		symbol = '✓'
		symbolColor = color.FgGreen
	case "would rewrite":
		symbol = '⟳'
		symbolColor = color.FgBlue
	case "dropped":
		symbol = '✗'
		symbolColor = color.FgRed
	case "migrated":
		symbol = '•'
		symbolColor = color.FgCyan
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	endpoint := op.Endpoint
	if endpoint == "" {
		endpoint = "(" + op.Shape + ")"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", handlerIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", endpointWidth, endpoint),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", lineWidth, fmt.Sprintf("line %d", op.Line))),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogHandler logs one handler block
func (l *Logger) LogHandler(ctx context.Context, op HandlerOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.handlers = append(l.handlers, op)

	fmt.Fprintln(l.console, l.formatHandler(op))

	l.zlog.Debug().
		Int("line", op.Line).
		Str("endpoint", op.Endpoint).
		Str("shape", op.Shape).
		Str("status", op.Status).
		Msg("handler")
}

// 📝 StartRun starts a new migration run
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.handlers = nil

	mode := "write"
	if op.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Target),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	l.zlog.Debug().
		Str("target", op.Target).
		Bool("dry_run", op.DryRun).
		Msg("starting migration")
}

// 📝 EndRun ends the current migration run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Debug().
		Str("target", l.currentOp.Target).
		Int("handlers", len(l.handlers)).
		Msg("migration complete")

	l.currentOp = nil
	l.handlers = nil
}

// 📊 Summary renders the end-of-run counts as a table
func (l *Logger) Summary(rows []SummaryRow) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"handlers", "count"}}
	ev := l.zlog.Debug()
	for _, r := range rows {
		data = append(data, []string{r.Label, fmt.Sprintf("%d", r.Count)})
		ev = ev.Int(strings.ReplaceAll(r.Label, " ", "_"), r.Count)
	}
	ev.Msg("summary")

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		l.zlog.Debug().Err(err).Msg("rendering summary table")
		return
	}
	fmt.Fprintf(l.console, "\n%s\n", table)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("pagemigrate")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Debug().Str("kind", "header").Msg(msg)
}

// 📝 Raw writes text to the console without decoration
func (l *Logger) Raw(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, text)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Debug().Str("kind", "success").Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Debug().Str("kind", "warning").Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Debug().Str("kind", "error").Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Debug().Str("kind", "info").Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}
