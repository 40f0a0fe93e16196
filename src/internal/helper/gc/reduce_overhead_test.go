// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or use this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorReader struct{ err error }

func (e *errorReader) Read(p []byte) (int, error) { return 0, e.err }

type foreignBuffer struct{ bytes.Buffer }

func TestPoolGetPut(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "buffer round trip",
			testFunc: func(t *testing.T) {
				buf := Default.Get()
				buf.WriteString("hello")
				buf.WriteByte(' ')
				buf.Write([]byte("world"))
				assert.Equal(t, "hello world", buf.String())
				assert.Equal(t, 11, buf.Len())

				var out bytes.Buffer
				n, err := buf.WriteTo(&out)
				require.NoError(t, err)
				assert.EqualValues(t, 11, n)

				buf.Reset()
				assert.Zero(t, buf.Len())
				Default.Put(buf)
			},
		},
		{
			name: "foreign buffers are dropped",
			testFunc: func(t *testing.T) {
				assert.NotPanics(t, func() { Default.Put(&foreignBuffer{}) })
			},
		},
		{
			name: "concurrent use",
			testFunc: func(t *testing.T) {
				var wg sync.WaitGroup
				for i := 0; i < 32; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						buf := Default.Get()
						defer func() {
							buf.Reset()
							Default.Put(buf)
						}()
						buf.WriteString("certificate")
						assert.Equal(t, "certificate", buf.String())
					}()
				}
				wg.Wait()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestReadAllLimit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int64
		want    string
		wantErr error
	}{
		{"under limit", "crl-bytes", 64, "crl-bytes", nil},
		{"exactly at limit", "abcd", 4, "abcd", nil},
		{"over limit", "abcde", 4, "", ErrTooLarge},
		{"no limit", strings.Repeat("x", 1024), 0, strings.Repeat("x", 1024), nil},
		{"empty", "", 10, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadAllLimit(strings.NewReader(tt.input), tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	t.Run("reader error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := ReadAllLimit(&errorReader{err: boom}, 10)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("result does not alias pooled memory", func(t *testing.T) {
		first, err := ReadAllLimit(strings.NewReader("first"), 0)
		require.NoError(t, err)
		_, err = ReadAllLimit(strings.NewReader("other"), 0)
		require.NoError(t, err)
		assert.Equal(t, "first", string(first))
	})
}
