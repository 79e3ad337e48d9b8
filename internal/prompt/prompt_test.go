package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirmDefaultYesOnEmptyLine(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(strings.NewReader("\n"), &out)
	got, err := p.Confirm("rebuild?", true)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if !got {
		t.Fatal("expected default yes")
	}
}

func TestConfirmDefaultNoOnEOF(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(strings.NewReader(""), &out)
	got, err := p.Confirm("fetch origin?", true)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if got {
		t.Fatal("expected false on EOF regardless of default")
	}
}

func TestConfirmExplicitYesNo(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(strings.NewReader("no\n"), &out)
	got, err := p.Confirm("continue?", true)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if got {
		t.Fatal("expected explicit no to override default yes")
	}
}

func TestConfirmRetriesOnInvalidInput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(strings.NewReader("maybe\ny\n"), &out)
	got, err := p.Confirm("continue?", false)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if !got {
		t.Fatal("expected eventual yes after retry")
	}
	if !strings.Contains(out.String(), "please answer y or n") {
		t.Fatal("expected a retry hint to be printed")
	}
}

func TestAskStringTrimsWhitespace(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(strings.NewReader("  abc123  \n"), &out)
	got, err := p.AskString("commit?")
	if err != nil {
		t.Fatalf("AskString failed: %v", err)
	}
	if got != "abc123" {
		t.Fatalf("got %q, want %q", got, "abc123")
	}
}

func TestScriptedPrompterReplaysAnswers(t *testing.T) {
	t.Parallel()

	s := &Scripted{Confirms: []bool{true, false}, Strings: []string{"master"}}
	if v, err := s.Confirm("a", false); err != nil || !v {
		t.Fatalf("got %v, %v", v, err)
	}
	if v, err := s.Confirm("b", true); err != nil || v {
		t.Fatalf("got %v, %v", v, err)
	}
	if v, err := s.AskString("c"); err != nil || v != "master" {
		t.Fatalf("got %v, %v", v, err)
	}
	if _, err := s.AskString("d"); err == nil {
		t.Fatal("expected error once script is exhausted")
	}
}
