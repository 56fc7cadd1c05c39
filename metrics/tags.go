package metrics

import (
	"sort"
	"strconv"
	"strings"
)

// Tags labels a metric observation for grouping and filtering.
// Keys are plain identifiers chosen by the caller (endpoint, method,
// agent, ...); values are canonical strings. Scalar values should be
// converted with TagInt, TagFloat, or TagBool so the encoding is fixed
// in one place.
type Tags map[string]string

// TagInt returns the canonical tag encoding of an integer value.
func TagInt(v int) string { return strconv.Itoa(v) }

// TagFloat returns the canonical tag encoding of a float value.
func TagFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// TagBool returns the canonical tag encoding of a boolean value.
func TagBool(v bool) string { return strconv.FormatBool(v) }

// clone returns a defensive copy of the tag set.
func (t Tags) clone() Tags {
	if t == nil {
		return nil
	}
	c := make(Tags, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// sortedKeys returns the tag keys in lexicographic order.
func (t Tags) sortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// seriesKey addresses a single counter, gauge, or histogram series.
// The tag component is the canonical encoding from encodeTags, so two
// semantically equal tag sets always map to the same key regardless of
// insertion order. The series itself keeps its own name and Tags copy;
// the key is never parsed back.
type seriesKey struct {
	name string
	tags string
}

// encodeTags renders a tag set in canonical form: keys sorted
// lexicographically, values quoted. Quoting keeps the encoding
// unambiguous for values containing separators.
func encodeTags(t Tags) string {
	if len(t) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range t.sortedKeys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(t[k]))
	}
	return b.String()
}

// newSeriesKey builds the map key for a metric name and tag set.
func newSeriesKey(name string, tags Tags) seriesKey {
	return seriesKey{name: name, tags: encodeTags(tags)}
}
