package repl

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/internal/history/store"
)

func newInterpreter(history store.RunStore) *Interpreter {
	return NewInterpreter(Options{Logger: flog.Discard(), MaxResolveDepth: 100, History: history})
}

func TestInterpreter_Eval(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantKind  ReplyKind
		wantLines []string
	}{
		{"demo", []string{script.DemoProgram}, ReplyOutput, []string{"8"}},
		{"bindings persist across lines", []string{"x = 4 * 2;", "print(x + 1);"}, ReplyOutput, []string{"9"}},
		{"blank line", []string{"   "}, ReplyOutput, nil},
		{"syntax error", []string{"print(1"}, ReplyError, []string{`Error: on Line: (1, 8) -> Syntax Error: expected "," or ")", found end of input -> print(1`}},
		{"runtime error keeps output", []string{"print(1, y);"}, ReplyError, []string{"1", "invalid argument: unresolved variable: y"}},
		{"binding before failure survives", []string{"a = 1; foo(); ", "print(a);"}, ReplyOutput, []string{"1"}},
		{"vars", []string{`x = 4 * 2; s = "hi";`, ":vars"}, ReplyInfo, []string{"s = \"hi\"", "x = 4 * 2"}},
		{"vars empty", []string{":vars"}, ReplyInfo, []string{"no bindings"}},
		{"reset", []string{"x = 1;", ":reset", ":vars"}, ReplyInfo, []string{"no bindings"}},
		{"unknown command", []string{":load"}, ReplyError, []string{"unknown command: :load (try :help)"}},
		{"quit", []string{":quit"}, ReplyQuit, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInterpreter(nil)
			var reply Reply
			for _, line := range tt.lines {
				reply = in.Eval(context.Background(), line)
			}
			if reply.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v (lines %q)", reply.Kind, tt.wantKind, reply.Lines)
			}
			if strings.Join(reply.Lines, "\n") != strings.Join(tt.wantLines, "\n") {
				t.Errorf("Lines = %q, want %q", reply.Lines, tt.wantLines)
			}
		})
	}
}

func TestInterpreter_Help(t *testing.T) {
	reply := newInterpreter(nil).Eval(context.Background(), ":help")
	if reply.Kind != ReplyInfo || len(reply.Lines) != 4 {
		t.Errorf("help reply = %+v", reply)
	}
}

func TestInterpreter_RecordsHistory(t *testing.T) {
	history := store.NewMemoryRunStore()
	in := newInterpreter(history)

	in.Eval(context.Background(), "print(2);")
	in.Eval(context.Background(), ":vars")
	in.Eval(context.Background(), "print(z);")

	runs, err := history.List(context.Background(), store.RunFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("recorded %d runs, want 2 (commands are not recorded)", len(runs))
	}
	for _, r := range runs {
		if r.Origin != store.OriginREPL {
			t.Errorf("Origin = %q, want repl", r.Origin)
		}
	}

	failed, _ := history.List(context.Background(), store.RunFilter{OnlyFailed: true})
	if len(failed) != 1 || failed[0].ErrorKind != script.KindRuntime {
		t.Errorf("failed runs = %+v", failed)
	}
}

// send feeds msg to the model and runs a returned eval command synchronously
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func submit(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModel_SubmitAndRender(t *testing.T) {
	m := NewModel(context.Background(), newInterpreter(nil))
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m, cmd := submit(t, m, "x = 2; print(x * 3);")
	if !m.running {
		t.Error("model should be running after submit")
	}
	if cmd == nil {
		t.Fatal("submit should return an eval command")
	}
	m = send(t, m, cmd())

	if m.running {
		t.Error("model should be idle after the reply")
	}
	if len(m.transcript) != 1 || m.transcript[0].reply.Lines[0] != "6" {
		t.Fatalf("transcript = %+v", m.transcript)
	}
	if !strings.Contains(m.renderTranscript(), "6") {
		t.Error("transcript rendering should contain the output")
	}
	if !strings.Contains(m.View(), "1 bindings") {
		t.Errorf("status bar should count bindings:\n%s", m.View())
	}
}

func TestModel_Recall(t *testing.T) {
	m := NewModel(context.Background(), newInterpreter(nil))
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	for _, line := range []string{"print(1);", "print(2);"} {
		var cmd tea.Cmd
		m, cmd = submit(t, m, line)
		m = send(t, m, cmd())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "print(2);" {
		t.Errorf("first up = %q, want print(2);", m.input.Value())
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "print(1);" {
		t.Errorf("second up = %q, want print(1);", m.input.Value())
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.input.Value() != "" {
		t.Errorf("down past the end = %q, want empty", m.input.Value())
	}
}

func TestModel_QuitCommand(t *testing.T) {
	m := NewModel(context.Background(), newInterpreter(nil))
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m, cmd := submit(t, m, ":quit")
	_, quit := m.Update(cmd())
	if quit == nil {
		t.Fatal(":quit should return tea.Quit")
	}
	if _, ok := quit().(tea.QuitMsg); !ok {
		t.Error(":quit should produce a QuitMsg")
	}
}
