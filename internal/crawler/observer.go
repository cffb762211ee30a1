package crawler

import "log/slog"

// NopObserver discards all events
type NopObserver struct{}

func (NopObserver) WaveStarted(int, int)         {}
func (NopObserver) URLStarted(Task)              {}
func (NopObserver) URLCompleted(string, Outcome) {}
func (NopObserver) LinkDiscovered(string, Task)  {}

// LogObserver writes crawl events to a structured logger.
// Transport failures and faults are logged at error level, HTTP errors at
// warn level, everything else at debug level.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an observer logging to logger, or to slog.Default() when nil
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

// WaveStarted logs the start of a depth level
func (o *LogObserver) WaveStarted(depth, size int) {
	o.logger.Debug("Starting wave", "depth", depth, "urls", size)
}

// URLStarted logs a fetch about to be issued
func (o *LogObserver) URLStarted(task Task) {
	o.logger.Debug("Fetching URL", "url", task.URL, "depth", task.Depth, "recurse", task.Recurse)
}

// URLCompleted logs the outcome of a fetch
func (o *LogObserver) URLCompleted(url string, outcome Outcome) {
	attrs := []any{
		"url", url,
		"status", outcome.Status(),
		"size", outcome.Size,
		"referrer", outcome.Referrer,
	}

	switch outcome.Class {
	case ClassTransportFailure, ClassFault:
		o.logger.Error("Error fetching URL", append(attrs, "error", outcome.Detail)...)
	case ClassHTTPError:
		o.logger.Warn("Found error status code", attrs...)
	case ClassInvalidURL:
		o.logger.Debug("Skipping invalid URL", attrs...)
	case ClassOutOfScopeRedirect:
		o.logger.Debug("URL redirected outside the crawled domain", append(attrs, "final_url", outcome.FinalURL)...)
	default:
		o.logger.Debug("Fetched URL", append(attrs, "elapsed", outcome.Timing.DownloadTime, "ttfb", outcome.Timing.TTFB)...)
	}
}

// LinkDiscovered logs a newly admitted link
func (o *LogObserver) LinkDiscovered(from string, task Task) {
	o.logger.Debug("Discovered link", "from", from, "url", task.URL, "text", task.AnchorText, "depth", task.Depth, "recurse", task.Recurse)
}

// MultiObserver forwards every event to each of its observers in order
type MultiObserver []Observer

// NewMultiObserver combines observers, skipping nil ones
func NewMultiObserver(observers ...Observer) MultiObserver {
	m := make(MultiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m MultiObserver) WaveStarted(depth, size int) {
	for _, o := range m {
		o.WaveStarted(depth, size)
	}
}

func (m MultiObserver) URLStarted(task Task) {
	for _, o := range m {
		o.URLStarted(task)
	}
}

func (m MultiObserver) URLCompleted(url string, outcome Outcome) {
	for _, o := range m {
		o.URLCompleted(url, outcome)
	}
}

func (m MultiObserver) LinkDiscovered(from string, task Task) {
	for _, o := range m {
		o.LinkDiscovered(from, task)
	}
}
