// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package events

import (
	"sort"
	"sync"
)

// Observation is one distinct algorithm usage and how often it was seen.
type Observation struct {
	Name          string `json:"name"`
	OID           string `json:"oid,omitempty"`
	UsageLocation string `json:"location"`
	Count         int    `json:"count"`
}

type observationKey struct {
	name, oid, location string
}

// UsageStatistics aggregates [AlgorithmUsageEvent]s. Other events are
// ignored. It is a [Handler] and is safe for concurrent use.
type UsageStatistics struct {
	mu     sync.Mutex
	counts map[observationKey]int
}

// NewUsageStatistics returns an empty aggregator.
func NewUsageStatistics() *UsageStatistics {
	return &UsageStatistics{counts: make(map[observationKey]int)}
}

// OnEvent implements [Handler].
func (s *UsageStatistics) OnEvent(e Event) {
	ev, ok := e.(*AlgorithmUsageEvent)
	if !ok {
		return
	}
	s.mu.Lock()
	s.counts[observationKey{ev.Name, ev.OID, ev.UsageLocation}]++
	s.mu.Unlock()
}

// Merge adds every observation of other into s. other is not modified.
func (s *UsageStatistics) Merge(other *UsageStatistics) {
	if other == nil || other == s {
		return
	}
	other.mu.Lock()
	snapshot := make(map[observationKey]int, len(other.counts))
	for k, v := range other.counts {
		snapshot[k] = v
	}
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range snapshot {
		s.counts[k] += v
	}
}

// Observations returns the distinct observations sorted by location, then
// name, then OID.
func (s *UsageStatistics) Observations() []Observation {
	s.mu.Lock()
	out := make([]Observation, 0, len(s.counts))
	for k, v := range s.counts {
		out = append(out, Observation{Name: k.name, OID: k.oid, UsageLocation: k.location, Count: v})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UsageLocation != b.UsageLocation {
			return a.UsageLocation < b.UsageLocation
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.OID < b.OID
	})
	return out
}

// Total returns the number of events seen.
func (s *UsageStatistics) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.counts {
		n += v
	}
	return n
}
