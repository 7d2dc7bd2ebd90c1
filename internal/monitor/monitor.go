// Package monitor records query activity as append-only JSONL files and
// summarizes it on demand.
package monitor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	queriesFile = "queries.jsonl"
	metricsFile = "metrics.jsonl"
)

// QueryRecord is one logged query.
type QueryRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Query        string    `json:"query"`
	ChunksUsed   int       `json:"chunks_retrieved"`
	ResponseTime float64   `json:"response_time_seconds"`
	CacheHit     bool      `json:"cache_hit"`
	Error        string    `json:"error,omitempty"`
}

// Monitor appends query and metric records under a log directory.
type Monitor struct {
	dir string
	now func() time.Time
}

// New creates a monitor, creating the log directory if needed.
func New(dir string) (*Monitor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &Monitor{dir: dir, now: time.Now}, nil
}

// LogQuery appends one query record.
func (m *Monitor) LogQuery(query string, chunks int, elapsed time.Duration, cacheHit bool, queryErr error) error {
	rec := QueryRecord{
		Timestamp:    m.now(),
		Query:        query,
		ChunksUsed:   chunks,
		ResponseTime: elapsed.Seconds(),
		CacheHit:     cacheHit,
	}
	if queryErr != nil {
		rec.Error = queryErr.Error()
	}
	return m.appendJSONL(queriesFile, rec)
}

// LogMetrics appends an arbitrary metrics record stamped with the current
// time.
func (m *Monitor) LogMetrics(metrics map[string]any) error {
	entry := make(map[string]any, len(metrics)+1)
	for k, v := range metrics {
		entry[k] = v
	}
	entry["timestamp"] = m.now()
	return m.appendJSONL(metricsFile, entry)
}

func (m *Monitor) appendJSONL(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode log record: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(m.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append log record: %w", err)
	}
	return nil
}

// QueryStats summarizes recent query activity.
type QueryStats struct {
	TotalQueries    int     `json:"total_queries"`
	AvgResponseTime float64 `json:"avg_response_time"`
	MaxResponseTime float64 `json:"max_response_time"`
	MinResponseTime float64 `json:"min_response_time"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	ErrorRate       float64 `json:"error_rate"`
}

// QueryStatistics summarizes the last n queries. Response times only count
// successful queries; hit and error rates count all of them.
func (m *Monitor) QueryStatistics(lastN int) (QueryStats, error) {
	records, err := m.readQueries()
	if err != nil {
		return QueryStats{}, err
	}
	if lastN > 0 && len(records) > lastN {
		records = records[len(records)-lastN:]
	}
	if len(records) == 0 {
		return QueryStats{}, nil
	}

	stats := QueryStats{TotalQueries: len(records)}
	var sum float64
	var succeeded, hits, errors int
	for _, r := range records {
		if r.CacheHit {
			hits++
		}
		if r.Error != "" {
			errors++
			continue
		}
		succeeded++
		sum += r.ResponseTime
		if r.ResponseTime > stats.MaxResponseTime {
			stats.MaxResponseTime = r.ResponseTime
		}
		if stats.MinResponseTime == 0 || r.ResponseTime < stats.MinResponseTime {
			stats.MinResponseTime = r.ResponseTime
		}
	}
	if succeeded > 0 {
		stats.AvgResponseTime = sum / float64(succeeded)
	}
	stats.CacheHitRate = float64(hits) / float64(len(records))
	stats.ErrorRate = float64(errors) / float64(len(records))
	return stats, nil
}

// CommonQuery is a repeated query and how often it was asked.
type CommonQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// CommonQueries returns queries asked at least minCount times, most
// frequent first. Queries are compared lowercased and trimmed.
func (m *Monitor) CommonQueries(minCount int) ([]CommonQuery, error) {
	records, err := m.readQueries()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range records {
		counts[strings.ToLower(strings.TrimSpace(r.Query))]++
	}

	var common []CommonQuery
	for q, c := range counts {
		if c >= minCount {
			common = append(common, CommonQuery{Query: q, Count: c})
		}
	}
	sort.SliceStable(common, func(i, j int) bool {
		if common[i].Count != common[j].Count {
			return common[i].Count > common[j].Count
		}
		return common[i].Query < common[j].Query
	})
	return common, nil
}

// readQueries loads every query record, skipping unparseable lines.
func (m *Monitor) readQueries() ([]QueryRecord, error) {
	f, err := os.Open(filepath.Join(m.dir, queriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read query log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []QueryRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var r QueryRecord
		if json.Unmarshal(scanner.Bytes(), &r) != nil {
			continue
		}
		records = append(records, r)
	}
	return records, scanner.Err()
}
