package metrics

import (
	"sort"
	"strconv"
	"strings"
)

// PrometheusText renders all counter and gauge series in the
// Prometheus text exposition format: a "# TYPE" comment per metric
// name followed by one "name{tag=\"val\",...} value" line per tagged
// series. Histogram series are not part of the text export; consumers
// wanting histogram data use Snapshot, or the summary-emitting
// collector in internal/exporter.
func (a *Aggregator) PrometheusText() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var b strings.Builder

	writeBlock := func(kind string, names []string, lines map[string][]string) {
		sort.Strings(names)
		for _, name := range names {
			b.WriteString("# TYPE ")
			b.WriteString(name)
			b.WriteByte(' ')
			b.WriteString(kind)
			b.WriteByte('\n')
			series := lines[name]
			sort.Strings(series)
			for _, line := range series {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}

	counterLines := make(map[string][]string)
	for key, c := range a.counters {
		counterLines[key.name] = append(counterLines[key.name], sampleLine(key.name, c.tags, c.value))
	}
	writeBlock("counter", mapKeys(counterLines), counterLines)

	gaugeLines := make(map[string][]string)
	for key, g := range a.gauges {
		gaugeLines[key.name] = append(gaugeLines[key.name], sampleLine(key.name, g.tags, g.value))
	}
	writeBlock("gauge", mapKeys(gaugeLines), gaugeLines)

	return b.String()
}

// sampleLine renders one exposition line with sorted labels.
func sampleLine(name string, tags Tags, value float64) string {
	var b strings.Builder
	b.WriteString(name)
	if len(tags) > 0 {
		b.WriteByte('{')
		for i, k := range tags.sortedKeys() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strconv.Quote(tags[k]))
		}
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	return b.String()
}

func mapKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
