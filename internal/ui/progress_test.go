package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gtrans/internal/driver"
)

func TestProgressModelEvents(t *testing.T) {
	events := make(chan driver.ProgressEvent)
	model := NewProgressModel("translating", []string{"a.java", "b.java"}, events)
	m := model.(*progressModel)

	m.Update(eventMsg{Path: "a.java", Status: driver.FileWorking, Total: 2})
	m.Update(eventMsg{Path: "a.java", Status: driver.FileDone, Elapsed: 3 * time.Millisecond, Done: 1, Total: 2})
	m.Update(eventMsg{Path: "b.java", Status: driver.FileFailed, Done: 2, Total: 2})

	if m.done != 2 || m.failed != 1 {
		t.Fatalf("done=%d failed=%d, want 2 and 1", m.done, m.failed)
	}
	view := m.View()
	for _, want := range []string{"translating [2/2], 1 failed", "a.java", "3.0 ms", "failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelUnknownPathIsTracked(t *testing.T) {
	m := NewProgressModel("t", nil, nil).(*progressModel)
	m.applyEvent(driver.ProgressEvent{Path: "late.java", Status: driver.FileWorking})
	if len(m.items) != 1 || m.items[0].status != driver.FileWorking {
		t.Fatalf("items = %+v", m.items)
	}
}

func TestProgressModelQuitsWhenChannelCloses(t *testing.T) {
	events := make(chan driver.ProgressEvent)
	close(events)
	m := NewProgressModel("t", []string{"x"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	if _, cmd := m.Update(msg); cmd == nil {
		t.Fatal("expected quit command")
	}
	if !strings.Contains(m.View(), "done: ") {
		t.Fatalf("view not finished:\n%s", m.View())
	}
}

func TestProgressModelWindowSize(t *testing.T) {
	m := NewProgressModel("t", []string{"a", "b", "c", "d", "e", "f", "g", "h"}, nil).(*progressModel)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 9})
	if m.prog.Width != 36 {
		t.Fatalf("progress width = %d, want 36", m.prog.Width)
	}
	if got := len(m.visibleItems()); got != 3 {
		t.Fatalf("visible = %d, want 3", got)
	}
}

func TestTruncateKeepsTail(t *testing.T) {
	got := truncate("src/very/long/path/File.java", 12)
	if got != "...File.java" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
