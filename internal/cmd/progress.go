package cmd

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/briandowns/spinner"

	"github.com/masahif/find404/internal/crawler"
)

// progressObserver shows a spinner with running crawl counters on a terminal
type progressObserver struct {
	spinner *spinner.Spinner

	depth      atomic.Int64
	checked    atomic.Int64
	discovered atomic.Int64
	failures   atomic.Int64
}

func newProgressObserver(out *os.File) *progressObserver {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(out))
	return newProgressObserverWithSpinner(s)
}

func newProgressObserverWithSpinner(s *spinner.Spinner) *progressObserver {
	p := &progressObserver{spinner: s}
	p.discovered.Store(1) // the seed
	p.update()
	return p
}

// progressWriter returns stderr as a file when progress can be drawn on it
func progressWriter(w io.Writer, verbose bool) (*os.File, bool) {
	if verbose {
		return nil, false
	}
	f, ok := w.(*os.File)
	return f, ok
}

func (p *progressObserver) Start() { p.spinner.Start() }
func (p *progressObserver) Stop()  { p.spinner.Stop() }

func (p *progressObserver) WaveStarted(depth, _ int) {
	p.depth.Store(int64(depth))
	p.update()
}

func (p *progressObserver) URLStarted(crawler.Task) {}

func (p *progressObserver) URLCompleted(_ string, outcome crawler.Outcome) {
	p.checked.Add(1)
	if outcome.IsFailure() {
		p.failures.Add(1)
	}
	p.update()
}

func (p *progressObserver) LinkDiscovered(string, crawler.Task) {
	p.discovered.Add(1)
	p.update()
}

func (p *progressObserver) suffix() string {
	return fmt.Sprintf(" depth %d: %d/%d URLs checked, %d failed",
		p.depth.Load(), p.checked.Load(), p.discovered.Load(), p.failures.Load())
}

func (p *progressObserver) update() {
	p.spinner.Lock()
	p.spinner.Suffix = p.suffix()
	p.spinner.Unlock()
}

// Writer wraps out so that lines written while the spinner is drawn start on
// a cleared line instead of being appended to the spinner frame.
func (p *progressObserver) Writer(out io.Writer) io.Writer {
	return &spinnerSafeWriter{spinner: p.spinner, out: out}
}

type spinnerSafeWriter struct {
	spinner *spinner.Spinner
	out     io.Writer
}

func (w *spinnerSafeWriter) Write(b []byte) (int, error) {
	if !w.spinner.Active() {
		return w.out.Write(b)
	}

	// Holding the lock keeps the next frame from interleaving with b.
	w.spinner.Lock()
	defer w.spinner.Unlock()
	if _, err := io.WriteString(w.out, "\r\033[K"); err != nil {
		return 0, err
	}
	return w.out.Write(b)
}
