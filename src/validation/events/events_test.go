// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package events

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otherEvent struct{}

func (otherEvent) EventType() string { return "other" }

type countingHandler struct{ n atomic.Int64 }

func (c *countingHandler) OnEvent(Event) { c.n.Add(1) }

func TestCompliance(t *testing.T) {
	tests := []struct {
		name  string
		event *AlgorithmUsageEvent
		ades  bool
		etsi  bool
	}{
		{"sha256 rsa by oid", NewAlgorithmUsageEvent("whatever", "1.2.840.113549.1.1.11", LocationCertificateCheck), true, true},
		{"ecdsa by go name", NewAlgorithmUsageEvent("ECDSA-SHA256", "", LocationOCSPCheck), true, true},
		{"case insensitive name", NewAlgorithmUsageEvent("SHA256WITHRSAENCRYPTION", "", LocationCRLCheck), true, true},
		{"separator insensitive name", NewAlgorithmUsageEvent("sha_256", "", LocationCRLCheck), true, true},
		{"ed25519", NewAlgorithmUsageEvent("Ed25519", "1.3.101.112", LocationCertificateCheck), true, true},
		{"sha224 only ades", NewAlgorithmUsageEvent("SHA224-RSA", "", LocationCertificateCheck), true, false},
		{"sha1 rejected by oid", NewAlgorithmUsageEvent("SHA1-RSA", "1.2.840.113549.1.1.5", LocationCertificateCheck), false, false},
		{"md5 rejected by name", NewAlgorithmUsageEvent("MD5-RSA", "", LocationCertificateCheck), false, false},
		{"oid wins over name", NewAlgorithmUsageEvent("SHA256-RSA", "1.2.840.113549.1.1.5", LocationCertificateCheck), false, false},
		{"query by oid", NewAlgorithmQuery("1.2.840.10045.4.3.1"), true, false},
		{"query by name", NewAlgorithmQuery("ecdsa-with-SHA384"), true, true},
		{"query with dotted name", NewAlgorithmQuery("SHA512/256.v2"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ades, tt.event.IsAllowedAccordingToAdES())
			assert.Equal(t, tt.etsi, tt.event.IsAllowedAccordingToEtsiTs119312())
		})
	}
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("none")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.True(t, p.Allows("MD5", ""))

	p, err = ProfileByName("ETSI-TS-119-312")
	require.NoError(t, err)
	assert.Same(t, EtsiTs119312, p)

	p, err = ProfileByName("ades")
	require.NoError(t, err)
	assert.Equal(t, "ades", p.Name())

	_, err = ProfileByName("fips")
	assert.Error(t, err)
}

func TestManager(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "handlers receive every event type in order",
			testFunc: func(t *testing.T) {
				m := NewManager()
				var got []string
				m.Register(HandlerFunc(func(e Event) { got = append(got, "a:"+e.EventType()) }))
				m.Register(HandlerFunc(func(e Event) { got = append(got, "b:"+e.EventType()) }))

				m.Dispatch(NewAlgorithmUsageEvent("SHA256-RSA", "", LocationCertificateCheck))
				m.Dispatch(otherEvent{})
				m.Dispatch(nil)

				assert.Equal(t, []string{"a:algorithm-usage", "b:algorithm-usage", "a:other", "b:other"}, got)
			},
		},
		{
			name: "unregister by value",
			testFunc: func(t *testing.T) {
				m := NewManager()
				h := &countingHandler{}
				m.Register(h)
				m.Dispatch(otherEvent{})
				m.Unregister(h)
				m.Dispatch(otherEvent{})
				assert.EqualValues(t, 1, h.n.Load())
				assert.Equal(t, 0, m.Len())
			},
		},
		{
			name: "unregister func handler through returned function",
			testFunc: func(t *testing.T) {
				m := NewManager()
				calls := 0
				f := HandlerFunc(func(Event) { calls++ })
				remove := m.Register(f)
				m.Unregister(f)
				assert.Equal(t, 1, m.Len(), "func handlers are not comparable")
				remove()
				remove()
				m.Dispatch(otherEvent{})
				assert.Zero(t, calls)
				assert.Equal(t, 0, m.Len())
			},
		},
		{
			name: "handler may unregister itself during dispatch",
			testFunc: func(t *testing.T) {
				m := NewManager()
				var remove func()
				calls := 0
				remove = m.Register(HandlerFunc(func(Event) {
					calls++
					remove()
				}))
				m.Dispatch(otherEvent{})
				m.Dispatch(otherEvent{})
				assert.Equal(t, 1, calls)
			},
		},
		{
			name: "nil handler panics",
			testFunc: func(t *testing.T) {
				assert.Panics(t, func() { NewManager().Register(nil) })
			},
		},
		{
			name: "concurrent register and dispatch",
			testFunc: func(t *testing.T) {
				m := NewManager()
				h := &countingHandler{}
				m.Register(h)

				var wg sync.WaitGroup
				for i := 0; i < 8; i++ {
					wg.Add(2)
					go func() {
						defer wg.Done()
						for j := 0; j < 50; j++ {
							m.Dispatch(otherEvent{})
						}
					}()
					go func() {
						defer wg.Done()
						for j := 0; j < 50; j++ {
							m.Register(&countingHandler{})()
						}
					}()
				}
				wg.Wait()
				assert.EqualValues(t, 400, h.n.Load())
				assert.Equal(t, 1, m.Len())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestUsageStatisticsMerge(t *testing.T) {
	left := NewUsageStatistics()
	right := NewUsageStatistics()

	left.OnEvent(NewAlgorithmUsageEvent("SHA256-RSA", "1.2.840.113549.1.1.11", LocationCertificateCheck))
	left.OnEvent(NewAlgorithmUsageEvent("SHA256-RSA", "1.2.840.113549.1.1.11", LocationCertificateCheck))
	left.OnEvent(otherEvent{})
	right.OnEvent(NewAlgorithmUsageEvent("ECDSA-SHA256", "1.2.840.10045.4.3.2", LocationOCSPCheck))
	right.OnEvent(NewAlgorithmUsageEvent("ECDSA-SHA384", "1.2.840.10045.4.3.3", LocationCRLCheck))

	left.Merge(right)
	left.Merge(nil)
	left.Merge(left)

	obs := left.Observations()
	require.Len(t, obs, 3)
	assert.Equal(t, 4, left.Total())
	assert.Equal(t, 2, right.Total(), "merge source is untouched")

	seen := map[string]int{}
	for _, o := range obs {
		seen[o.Name+"@"+o.UsageLocation] = o.Count
	}
	assert.Equal(t, map[string]int{
		"SHA256-RSA@" + LocationCertificateCheck: 2,
		"ECDSA-SHA256@" + LocationOCSPCheck:      1,
		"ECDSA-SHA384@" + LocationCRLCheck:       1,
	}, seen)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewMetricsHandler(reg)

	m := NewManager()
	m.Register(h)
	m.Dispatch(NewAlgorithmUsageEvent("ECDSA-SHA256", "1.2.840.10045.4.3.2", LocationCertificateCheck))
	m.Dispatch(NewAlgorithmUsageEvent("ECDSA-SHA256", "1.2.840.10045.4.3.2", LocationCertificateCheck))
	m.Dispatch(NewAlgorithmUsageEvent("SHA1-RSA", "1.2.840.113549.1.1.5", LocationCRLCheck))
	m.Dispatch(otherEvent{})

	assert.Equal(t, 2, testutil.CollectAndCount(h.Collector()))
	assert.Equal(t, float64(2), testutil.ToFloat64(h.Collector().WithLabelValues("ECDSA-SHA256", LocationCertificateCheck, "true", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.Collector().WithLabelValues("SHA1-RSA", LocationCRLCheck, "false", "false")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "x509_trust_algorithm_usage_total", families[0].GetName())
}

func TestNewComplianceProfile(t *testing.T) {
	p := NewComplianceProfile("rsa-sha256-only", "1.2.840.113549.1.1.11")
	assert.Equal(t, "rsa-sha256-only", p.Name())
	assert.True(t, p.Allows("SHA256-RSA", "1.2.840.113549.1.1.11"))
	assert.False(t, p.Allows("ECDSA-SHA256", "1.2.840.10045.4.3.2"))
	assert.False(t, p.Allows("SHA256-RSA", ""))
}
