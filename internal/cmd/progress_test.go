package cmd

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/masahif/find404/internal/crawler"
)

func TestProgressObserver(t *testing.T) {
	var buf bytes.Buffer
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(&buf))
	p := newProgressObserverWithSpinner(s)

	if got := s.Suffix; got != " depth 0: 0/1 URLs checked, 0 failed" {
		t.Errorf("Unexpected initial suffix %q", got)
	}

	p.WaveStarted(0, 1)
	p.URLStarted(crawler.Task{URL: "http://example.com"})
	p.URLCompleted("http://example.com", crawler.Outcome{Class: crawler.ClassOK, StatusCode: 200})
	p.LinkDiscovered("http://example.com", crawler.Task{URL: "http://example.com/a", Depth: 1})
	p.LinkDiscovered("http://example.com", crawler.Task{URL: "http://example.com/b", Depth: 1})
	p.WaveStarted(1, 2)
	p.URLCompleted("http://example.com/a", crawler.Outcome{Class: crawler.ClassHTTPError, StatusCode: 404})

	if got := s.Suffix; got != " depth 1: 2/3 URLs checked, 1 failed" {
		t.Errorf("Unexpected suffix %q", got)
	}
}

func TestProgressWriter(t *testing.T) {
	if _, ok := progressWriter(&bytes.Buffer{}, false); ok {
		t.Error("Progress should not draw on a buffer")
	}
	if _, ok := progressWriter(os.Stderr, true); ok {
		t.Error("Progress should be disabled in verbose mode")
	}
	if f, ok := progressWriter(os.Stderr, false); !ok || f != os.Stderr {
		t.Error("Expected stderr to be usable for progress")
	}
}

func TestProgressWriterPassesThroughWhenIdle(t *testing.T) {
	var frames, logs bytes.Buffer
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(&frames))
	p := newProgressObserverWithSpinner(s)

	w := p.Writer(&logs)
	if _, err := w.Write([]byte("WARN Found error status code\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := logs.String(); got != "WARN Found error status code\n" {
		t.Errorf("Expected log line unchanged, got %q", got)
	}
	if frames.Len() != 0 {
		t.Errorf("Expected no spinner output, got %q", frames.String())
	}
}
