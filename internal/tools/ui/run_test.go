package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelCompletesOnActionMsg(t *testing.T) {
	m := newModel("seed apply", nil)
	next, cmd := m.Update(actionMsg{details: []string{"created products=10"}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	done := next.(model)
	if !done.done || done.err != nil {
		t.Fatalf("unexpected model state %+v", done)
	}
	view := done.View()
	if !strings.Contains(view, "seed apply") || !strings.Contains(view, "OK") || !strings.Contains(view, "created products=10") {
		t.Fatalf("unexpected view %q", view)
	}
}

func TestModelShowsFailure(t *testing.T) {
	m := newModel("migrate up", nil)
	next, _ := m.Update(actionMsg{err: errors.New("db down")})
	view := next.View()
	if !strings.Contains(view, "FAILED") || !strings.Contains(view, "db down") {
		t.Fatalf("unexpected failure view %q", view)
	}
}

func TestModelTicksUntilDone(t *testing.T) {
	m := newModel("loadgen run", nil)
	next, cmd := m.Update(tickMsg(m.startedAt.Add(time.Second)))
	if cmd == nil {
		t.Fatal("expected another tick while running")
	}
	running := next.(model)
	if running.elapsed != time.Second {
		t.Fatalf("expected elapsed 1s, got %v", running.elapsed)
	}
	if !strings.Contains(running.View(), "Running...") {
		t.Fatalf("unexpected running view %q", running.View())
	}
}

func TestModelCtrlCCancels(t *testing.T) {
	m := newModel("seed status", nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit on ctrl+c")
	}
	if !errors.Is(next.(model).err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", next.(model).err)
	}
}
