package metrics

import (
	"sync"
	"time"
)

// Metrics accumulates counters for one run of the pipeline. A single instance
// is shared between the driver and the monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	CandidatesFetched    int64
	ArticlesExtracted    int64
	ExtractionFailures   int64
	TranslationsOK       int64
	TranslationsFellBack int64
	DuplicatesFiltered   int64
	ArticlesDelivered    int64

	LastRunDuration time.Duration
	LastRunTime     time.Time
	LastError       string
	LastErrorTime   time.Time
	IsHealthy       bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesFetched += int64(n)
}

func (m *Metrics) IncrementExtracted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesExtracted++
}

func (m *Metrics) IncrementExtractionFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractionFailures++
}

func (m *Metrics) IncrementTranslated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsOK++
}

func (m *Metrics) IncrementTranslationFellBack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsFellBack++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) AddDelivered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesDelivered += int64(n)
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// GetStats returns a snapshot for the /metrics and /health endpoints.
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"candidates_fetched":     m.CandidatesFetched,
		"articles_extracted":     m.ArticlesExtracted,
		"extraction_failures":    m.ExtractionFailures,
		"translations_ok":        m.TranslationsOK,
		"translations_fell_back": m.TranslationsFellBack,
		"duplicates_filtered":    m.DuplicatesFiltered,
		"articles_delivered":     m.ArticlesDelivered,
		"last_run_duration_ms":   m.LastRunDuration.Milliseconds(),
		"last_run_time":          m.LastRunTime.Format(time.RFC3339),
		"last_error":             m.LastError,
		"last_error_time":        m.LastErrorTime.Format(time.RFC3339),
		"is_healthy":             m.IsHealthy,
	}
}
