// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fetch

import (
	"context"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/testpki"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
)

func TestHTTPConfig(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Default User Agent",
			testFunc: func(t *testing.T) {
				cfg := NewHTTPConfig("1.2.3")
				assert.Contains(t, cfg.GetUserAgent(), "X.509-Trust-Validator/1.2.3")
				cfg.UserAgent = "custom/1"
				assert.Equal(t, "custom/1", cfg.GetUserAgent())
			},
		},
		{
			name: "Client Tracks Timeout",
			testFunc: func(t *testing.T) {
				cfg := NewHTTPConfig("test")
				c := cfg.Client()
				assert.Equal(t, 10*time.Second, c.Timeout)
				assert.Same(t, c, cfg.Client())

				cfg.Timeout = time.Second
				updated := cfg.Client()
				assert.NotSame(t, c, updated)
				assert.Equal(t, time.Second, updated.Timeout)
				assert.Equal(t, 10*time.Second, c.Timeout)
			},
		},
		{
			name: "Client Is Safe For Concurrent Use",
			testFunc: func(t *testing.T) {
				cfg := NewHTTPConfig("test")
				cfg.Timeout = time.Second

				var wg sync.WaitGroup
				clients := make([]*http.Client, 16)
				for i := range clients {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						clients[i] = cfg.Client()
					}(i)
				}
				wg.Wait()

				for _, c := range clients {
					assert.Same(t, clients[0], c)
					assert.Equal(t, time.Second, c.Timeout)
				}
			},
		},
		{
			name: "Wait Without Limit",
			testFunc: func(t *testing.T) {
				assert.NoError(t, NewHTTPConfig("test").Wait(context.Background()))
			},
		},
		{
			name: "Wait Honours Cancellation",
			testFunc: func(t *testing.T) {
				cfg := NewHTTPConfig("test")
				cfg.RateLimit = 0.001
				require.NoError(t, cfg.Wait(context.Background()))

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
				defer cancel()
				assert.Error(t, cfg.Wait(ctx))
			},
		},
		{
			name: "Headers And Size Limit",
			testFunc: func(t *testing.T) {
				var gotUA, gotID string
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotUA, gotID = r.Header.Get("User-Agent"), r.Header.Get(RequestIDHeader)
					_, _ = io.WriteString(w, strings.Repeat("x", 64))
				}))
				defer srv.Close()

				cfg := NewHTTPConfig("test")
				req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
				require.NoError(t, err)
				body, err := cfg.do(context.Background(), req)
				require.NoError(t, err)
				assert.Len(t, body, 64)
				assert.Equal(t, cfg.GetUserAgent(), gotUA)
				_, err = uuid.Parse(gotID)
				assert.NoError(t, err)

				cfg.MaxResponseSize = 16
				req, err = http.NewRequest(http.MethodGet, srv.URL, nil)
				require.NoError(t, err)
				_, err = cfg.do(context.Background(), req)
				assert.ErrorIs(t, err, gc.ErrTooLarge)
			},
		},
		{
			name: "Unexpected Status",
			testFunc: func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "nope", http.StatusServiceUnavailable)
				}))
				defer srv.Close()

				req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
				require.NoError(t, err)
				_, err = NewHTTPConfig("test").do(context.Background(), req)
				assert.ErrorIs(t, err, ErrUnexpectedStatus)
				assert.Contains(t, err.Error(), "503")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestOCSPClient(t *testing.T) {
	root := testpki.NewRoot(t, "Fetch Root")

	t.Run("Posts Request And Returns Response", func(t *testing.T) {
		var leafCert atomic.Pointer[testpki.Entity]
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/ocsp-request", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			req, err := ocsp.ParseRequest(body)
			require.NoError(t, err)

			leaf := leafCert.Load()
			assert.Equal(t, 0, req.SerialNumber.Cmp(leaf.Cert.SerialNumber))
			w.Header().Set("Content-Type", "application/ocsp-response")
			_, _ = w.Write(root.OCSPResponse(t, leaf.Cert, testpki.OCSPOptions{Status: ocsp.Good}))
		}))
		defer srv.Close()

		leaf := root.Issue(t, testpki.Options{CommonName: "ocsp-fetch.example", OCSPServer: []string{srv.URL}})
		leafCert.Store(leaf)

		der, err := NewOCSPClient(nil).GetEncoded(context.Background(), leaf.Cert, root.Cert)
		require.NoError(t, err)
		basic, err := revdata.ParseOCSP(der)
		require.NoError(t, err)
		require.Len(t, basic.Responses, 1)
		assert.True(t, basic.Responses[0].CertID.Matches(leaf.Cert, root.Cert))
	})

	t.Run("Falls Back To Next Responder", func(t *testing.T) {
		var hits atomic.Int32
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer bad.Close()
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte{0x30, 0x03, 0x0a, 0x01, 0x01})
		}))
		defer good.Close()

		leaf := root.Issue(t, testpki.Options{CommonName: "fallback.example", OCSPServer: []string{bad.URL, good.URL}})
		der, err := NewOCSPClient(nil).GetEncoded(context.Background(), leaf.Cert, root.Cert)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x30, 0x03, 0x0a, 0x01, 0x01}, der)
		assert.EqualValues(t, 2, hits.Load())
	})

	t.Run("No Responder", func(t *testing.T) {
		leaf := root.IssueLeaf(t, "silent.example")
		der, err := NewOCSPClient(nil).GetEncoded(context.Background(), leaf.Cert, root.Cert)
		assert.NoError(t, err)
		assert.Nil(t, der)
	})

	t.Run("All Responders Fail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		leaf := root.Issue(t, testpki.Options{CommonName: "failing.example", OCSPServer: []string{srv.URL}})
		_, err := NewOCSPClient(nil).GetEncoded(context.Background(), leaf.Cert, root.Cert)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
}

func TestCRLClient(t *testing.T) {
	root := testpki.NewRoot(t, "Fetch Root")

	newServer := func(t *testing.T, body []byte) (*httptest.Server, *atomic.Int32) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write(body)
		}))
		t.Cleanup(srv.Close)
		return srv, &hits
	}

	t.Run("Downloads And Caches", func(t *testing.T) {
		der := root.CRL(t, testpki.CRLOptions{
			ThisUpdate: time.Now().Add(-time.Hour),
			NextUpdate: time.Now().Add(time.Hour),
		})
		srv, hits := newServer(t, der)
		leaf := root.Issue(t, testpki.Options{CommonName: "crl-fetch.example", CRLDistributionPoints: []string{srv.URL}})

		cache := NewCRLCache(nil)
		client := NewCRLClient(nil, cache)
		for range 3 {
			blobs, err := client.GetEncoded(context.Background(), leaf.Cert)
			require.NoError(t, err)
			require.Len(t, blobs, 1)
			assert.Equal(t, der, blobs[0])
		}
		assert.EqualValues(t, 1, hits.Load())
		assert.EqualValues(t, 2, cache.Metrics().Hits)
	})

	t.Run("PEM Is Normalised To DER", func(t *testing.T) {
		der := root.CRL(t, testpki.CRLOptions{})
		srv, _ := newServer(t, pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: der}))
		leaf := root.Issue(t, testpki.Options{CommonName: "pem-crl.example", CRLDistributionPoints: []string{srv.URL}})

		blobs, err := NewCRLClient(nil, nil).GetEncoded(context.Background(), leaf.Cert)
		require.NoError(t, err)
		require.Len(t, blobs, 1)
		assert.Equal(t, der, blobs[0])
	})

	t.Run("Skips Non HTTP Points", func(t *testing.T) {
		leaf := root.Issue(t, testpki.Options{
			CommonName:            "ldap.example",
			CRLDistributionPoints: []string{"ldap://directory.example/cn=crl"},
		})
		blobs, err := NewCRLClient(nil, nil).GetEncoded(context.Background(), leaf.Cert)
		assert.NoError(t, err)
		assert.Empty(t, blobs)
	})

	t.Run("Garbage Is An Error", func(t *testing.T) {
		srv, _ := newServer(t, []byte("definitely not a crl"))
		leaf := root.Issue(t, testpki.Options{CommonName: "garbage.example", CRLDistributionPoints: []string{srv.URL}})

		_, err := NewCRLClient(nil, nil).GetEncoded(context.Background(), leaf.Cert)
		assert.Error(t, err)
	})

	t.Run("Partial Failure Returns What Was Retrieved", func(t *testing.T) {
		der := root.CRL(t, testpki.CRLOptions{})
		good, _ := newServer(t, der)
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer bad.Close()

		leaf := root.Issue(t, testpki.Options{CommonName: "partial.example", CRLDistributionPoints: []string{bad.URL, good.URL}})
		blobs, err := NewCRLClient(nil, nil).GetEncoded(context.Background(), leaf.Cert)
		require.NoError(t, err)
		assert.Len(t, blobs, 1)
	})
}
