package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	PagesFetched       uint64            `json:"pages_fetched"`
	PostingsParsed     uint64            `json:"postings_parsed"`
	ApplicationsSaved  uint64            `json:"applications_saved"`
	ErrorsTotal        uint64            `json:"errors_total"`
	FetchSecondsAvg    float64           `json:"fetch_seconds_avg"`
	FetchesByComponent map[string]uint64 `json:"fetches_by_component,omitempty"`
	ErrorsByType       map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent  map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	pagesFetched      uint64
	postingsParsed    uint64
	applicationsSaved uint64
	errorsTotal       uint64

	fetchCount uint64
	fetchNanos uint64

	statsMu            sync.Mutex
	fetchesByComponent = map[string]uint64{}
	errorsByType       = map[string]uint64{}
	errorsByComponent  = map[string]uint64{}
)

func IncPagesFetched(component string) {
	atomic.AddUint64(&pagesFetched, 1)
	if component == "" {
		component = "unknown"
	}
	statsMu.Lock()
	fetchesByComponent[component]++
	statsMu.Unlock()
}

func IncPostingsParsed(_ string) {
	atomic.AddUint64(&postingsParsed, 1)
}

func IncApplicationsSaved(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&applicationsSaved, uint64(n))
}

func ObserveFetchDuration(_ string, seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&fetchCount, 1)
	atomic.AddUint64(&fetchNanos, uint64(seconds*1e9))
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	fetchesCopy := copyMap(fetchesByComponent)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&fetchCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&fetchNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		PagesFetched:       atomic.LoadUint64(&pagesFetched),
		PostingsParsed:     atomic.LoadUint64(&postingsParsed),
		ApplicationsSaved:  atomic.LoadUint64(&applicationsSaved),
		ErrorsTotal:        atomic.LoadUint64(&errorsTotal),
		FetchSecondsAvg:    avg,
		FetchesByComponent: fetchesCopy,
		ErrorsByType:       errorsTypeCopy,
		ErrorsByComponent:  errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
