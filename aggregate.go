package clfstat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Count is a key together with the number of times it was seen. It is
// encoded in JSON as a two-element array: [key, count].
type Count struct {
	Key string
	N   int
}

func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Key, c.N})
}

// UnmarshalJSON decodes a [key, count] pair.
func (c *Count) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("count: want [key, count], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Key); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &c.N)
}

// Result is a snapshot of an Aggregator's counts. Each of the Top lists is in
// descending order of count; keys with equal counts are in the order they
// were first seen.
type Result struct {
	TotalRequests          int     `json:"totalRequests"`
	UniqueRemoteHostsCount int     `json:"uniqueRemoteHostsCount"`
	TopRequests            []Count `json:"topRequests"`
	TopTrafficHours        []Count `json:"topTrafficHours"`
	TopStatusCodes         []Count `json:"topStatusCodes"`
}

// Limit returns a copy of r in which each Top list holds at most n entries.
// If n is zero or negative, r is returned unchanged.
func (r Result) Limit(n int) Result {
	if n <= 0 {
		return r
	}
	r.TopRequests = r.TopRequests[:min(n, len(r.TopRequests))]
	r.TopTrafficHours = r.TopTrafficHours[:min(n, len(r.TopTrafficHours))]
	r.TopStatusCodes = r.TopStatusCodes[:min(n, len(r.TopStatusCodes))]
	return r
}

// counter counts occurrences of string keys, remembering the order in which
// keys were first seen.
type counter struct {
	counts map[string]int
	keys   []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// ranked returns the counts in descending order. The sort is stable over the
// first-seen order, so the result is the same for the same input.
func (c *counter) ranked() []Count {
	out := make([]Count, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Count{Key: k, N: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].N > out[j].N
	})
	return out
}

// Aggregator keeps running counts over a stream of Records. It is not safe for
// concurrent use; Combine is meant to be called from a single transform.
type Aggregator struct {
	total    int
	hosts    map[string]struct{}
	requests *counter
	hours    *counter
	statuses *counter
}

// NewAggregator returns an Aggregator with all counts at zero.
func NewAggregator() *Aggregator {
	a := &Aggregator{}
	a.Reset()
	return a
}

// Combine adds r to the counts.
func (a *Aggregator) Combine(r Record) {
	a.total++
	a.hosts[r.RemoteHost.String()] = struct{}{}
	a.requests.inc(r.Request.String())
	if hour, ok := hourOfDay(r.DateTime); ok {
		a.hours.inc(hour)
	}
	a.statuses.inc(r.StatusCode.String())
}

// Result returns a snapshot of the counts so far. Later calls to Combine do
// not change it.
func (a *Aggregator) Result() Result {
	return Result{
		TotalRequests:          a.total,
		UniqueRemoteHostsCount: len(a.hosts),
		TopRequests:            a.requests.ranked(),
		TopTrafficHours:        a.hours.ranked(),
		TopStatusCodes:         a.statuses.ranked(),
	}
}

// Reset discards all counts, leaving a as if newly created.
func (a *Aggregator) Reset() {
	*a = Aggregator{
		hosts:    map[string]struct{}{},
		requests: newCounter(),
		hours:    newCounter(),
		statuses: newCounter(),
	}
}

// hourOfDay returns the UTC hour of v, from "0" to "23". A timestamp kept as
// a string by a coercer override is parsed here; a timestamp that cannot be
// parsed has no hour.
func hourOfDay(v Value) (string, bool) {
	if v.Kind() == String {
		v = ParseTimestamp(v.Raw())
	}
	t, ok := v.Time()
	if !ok {
		return "", false
	}
	return strconv.Itoa(t.In(time.UTC).Hour()), true
}
