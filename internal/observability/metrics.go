package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/yungbote/neurobridge-drillfix/internal/platform/envutil"
)

// MetricsFileEnv names where a run writes its Prometheus textfile, for node_exporter's
// textfile collector. Unset disables the export.
const MetricsFileEnv = "DRILLFIX_METRICS_FILE"

func MetricsFile() string {
	return envutil.String(MetricsFileEnv, "")
}

// RunMetrics are the counters of a single repair run.
type RunMetrics struct {
	Drills         *Counter
	Considered     *Counter
	Patched        *Counter
	Fallback       *Counter
	Skipped        *CounterVec
	Matches        *CounterVec
	IndexExercises *Gauge
	IndexSkipped   *Gauge
	Candidates     *Gauge
}

func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		Drills:         NewCounter("drillfix_drills_total", "Drills read from the drills dataset."),
		Considered:     NewCounter("drillfix_drills_considered_total", "Drills that passed validation."),
		Patched:        NewCounter("drillfix_drills_patched_total", "Patch entries written."),
		Fallback:       NewCounter("drillfix_drills_fallback_total", "Patch entries matched at exercise level."),
		Skipped:        NewCounterVec("drillfix_drills_skipped_total", "Drills left unpatched by reason.", []string{"reason"}),
		Matches:        NewCounterVec("drillfix_matches_total", "Patch entries by index source and match kind.", []string{"source", "match"}),
		IndexExercises: NewGauge("drillfix_index_exercises", "Reference exercises indexed."),
		IndexSkipped:   NewGauge("drillfix_index_exercises_skipped", "Reference exercises rejected while indexing."),
		Candidates:     NewGauge("drillfix_index_candidates", "Candidates in the reference index."),
	}
}

func (m *RunMetrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.Drills, m.Considered, m.Patched, m.Fallback, m.Skipped, m.Matches,
		m.IndexExercises, m.IndexSkipped, m.Candidates,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{name: name, help: help, labelNames: labels, values: map[string]float64{}}
}

func (c *CounterVec) Inc(values ...string) {
	c.Add(1, values...)
}

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil {
		return
	}
	lbl := labelString(c.labelNames, values)
	c.mu.Lock()
	c.values[lbl] += v
	c.mu.Unlock()
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelString(c.labelNames, values)]
}

// WritePrometheus emits series sorted by label set so repeated runs diff cleanly.
func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if err := writeHeader(w, c.name, c.help, "counter"); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", c.name, k, c.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type Counter struct {
	name string
	help string
	mu   sync.RWMutex
	val  float64
}

func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Inc() {
	c.Add(1)
}

func (c *Counter) Add(v float64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.val += v
	c.mu.Unlock()
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if err := writeHeader(w, c.name, c.help, "counter"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s %g\n", c.name, c.Value())
	return err
}

type Gauge struct {
	name string
	help string
	mu   sync.RWMutex
	val  float64
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.val = v
	g.mu.Unlock()
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.val
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	if err := writeHeader(w, g.name, g.help, "gauge"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s %g\n", g.name, g.Value())
	return err
}

func writeHeader(w io.Writer, name, help, kind string) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", name, help); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	return err
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(escapeLabel(val))
		b.WriteString("\"")
	}
	b.WriteString("}")
	return b.String()
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	v = strings.ReplaceAll(v, "\n", "\\n")
	return v
}
