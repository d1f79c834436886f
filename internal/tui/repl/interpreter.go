package repl

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/foundation/script/evaluator"
	"github.com/msto63/frege/foundation/utils/stringx"
	"github.com/msto63/frege/internal/history/store"
)

// Options configures the interpreter behind the REPL
type Options struct {
	Logger          *flog.Logger
	MaxSourceLength int
	MaxResolveDepth int
	History         store.RunStore // optional
}

// ReplyKind tells the view how to render a reply
type ReplyKind int

const (
	ReplyOutput ReplyKind = iota
	ReplyInfo
	ReplyError
	ReplyQuit
)

// Reply is the result of one submitted line
type Reply struct {
	Kind  ReplyKind
	Lines []string
}

// Interpreter evaluates lines against one persistent session, so
// assignments survive across lines.
type Interpreter struct {
	engine  *script.Engine
	session *evaluator.Session
	output  *bytes.Buffer
	history store.RunStore
	logger  *flog.Logger
}

// NewInterpreter creates an interpreter with an empty session
func NewInterpreter(opts Options) *Interpreter {
	if opts.Logger == nil {
		opts.Logger = flog.GetDefault()
	}

	out := &bytes.Buffer{}
	ev := evaluator.New(evaluator.Options{
		Logger:          opts.Logger,
		Output:          out,
		MaxResolveDepth: opts.MaxResolveDepth,
	})

	return &Interpreter{
		engine: script.NewEngine(script.Options{
			Logger:          opts.Logger,
			MaxSourceLength: opts.MaxSourceLength,
			MaxResolveDepth: opts.MaxResolveDepth,
		}),
		session: ev.NewSession(),
		output:  out,
		history: opts.History,
		logger:  opts.Logger.WithField("component", "repl"),
	}
}

// HelpText lists the REPL commands
const HelpText = `:vars   list bindings
:reset  clear all bindings
:help   show this help
:quit   leave the REPL`

// Eval handles one submitted line: a command or program text
func (in *Interpreter) Eval(ctx context.Context, line string) Reply {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Reply{Kind: ReplyOutput}
	}
	if strings.HasPrefix(trimmed, ":") {
		return in.command(trimmed)
	}
	return in.execute(ctx, line)
}

func (in *Interpreter) command(cmd string) Reply {
	switch cmd {
	case ":vars":
		bindings := in.session.Environment().Snapshot()
		if len(bindings) == 0 {
			return Reply{Kind: ReplyInfo, Lines: []string{"no bindings"}}
		}
		lines := make([]string, len(bindings))
		for i, b := range bindings {
			lines[i] = fmt.Sprintf("%s = %s", b.Name, b.Value)
		}
		return Reply{Kind: ReplyInfo, Lines: lines}
	case ":reset":
		in.session.Reset()
		return Reply{Kind: ReplyInfo, Lines: []string{"session reset"}}
	case ":help":
		return Reply{Kind: ReplyInfo, Lines: stringx.SplitLines(HelpText)}
	case ":quit", ":q", ":exit":
		return Reply{Kind: ReplyQuit}
	default:
		return Reply{Kind: ReplyError, Lines: []string{"unknown command: " + cmd + " (try :help)"}}
	}
}

func (in *Interpreter) execute(ctx context.Context, source string) Reply {
	start := time.Now()
	in.output.Reset()

	statements, err := in.engine.Build(source)
	if err == nil {
		err = in.session.Execute(ctx, statements)
	}

	output := splitLines(in.output.String())
	in.record(source, output, time.Since(start), err)

	if err != nil {
		return Reply{Kind: ReplyError, Lines: append(output, script.Describe(err))}
	}
	return Reply{Kind: ReplyOutput, Lines: output}
}

func (in *Interpreter) record(source string, output []string, elapsed time.Duration, runErr error) {
	if in.history == nil {
		return
	}
	rec := store.NewRunRecord(store.OriginREPL, source, &script.Result{Output: output, Duration: elapsed}, runErr)
	if err := in.history.Record(context.Background(), rec); err != nil {
		in.logger.LogError("failed to record run", err)
	}
}

// Bindings returns the number of live bindings
func (in *Interpreter) Bindings() int {
	return in.session.Environment().Len()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
