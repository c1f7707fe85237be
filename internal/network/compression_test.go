package network

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gz(t *testing.T, p []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(p)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zl(t *testing.T, p []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(p)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func response(body []byte, encodings ...string) *http.Response {
	h := http.Header{}
	for _, e := range encodings {
		h.Add("Content-Encoding", e)
	}
	h.Set("Content-Length", "123")
	return &http.Response{Header: h, Body: io.NopCloser(bytes.NewReader(body)), ContentLength: 123}
}

func TestDecodeBody_NoEncoding(t *testing.T) {
	resp := response([]byte("plain"))
	require.NoError(t, DecodeBody(resp))
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "plain", string(b))
	assert.False(t, resp.Uncompressed)
}

func TestDecodeBody_Deflate(t *testing.T) {
	resp := response(zl(t, []byte("zlib data")), "deflate")
	require.NoError(t, DecodeBody(resp))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "zlib data", string(b))
	assert.True(t, resp.Uncompressed)
	assert.Equal(t, int64(-1), resp.ContentLength)
	assert.Empty(t, resp.Header.Get("Content-Length"))
	assert.NoError(t, resp.Body.Close())
}

func TestDecodeBody_StackedEncodings(t *testing.T) {
	// deflate applied first, then gzip.
	inner := zl(t, []byte("layered"))
	outer := gz(t, inner)

	t.Run("separate header values", func(t *testing.T) {
		resp := response(outer, "deflate", "gzip")
		require.NoError(t, DecodeBody(resp))
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "layered", string(b))
	})

	t.Run("comma separated value", func(t *testing.T) {
		resp := response(outer, "deflate, gzip")
		require.NoError(t, DecodeBody(resp))
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "layered", string(b))
	})
}

func TestDecodeBody_InvalidGzip(t *testing.T) {
	resp := response([]byte("not gzip"), "gzip")
	err := DecodeBody(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

func TestLayeredBody_CloseIsIdempotent(t *testing.T) {
	resp := response(gz(t, []byte("x")), "gzip")
	require.NoError(t, DecodeBody(resp))
	assert.NoError(t, resp.Body.Close())
	assert.NoError(t, resp.Body.Close())
}

func TestDecodeBody_EmptyBodies(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
	}{
		{name: "no content", resp: &http.Response{StatusCode: http.StatusNoContent, ContentLength: -1}},
		{name: "not modified", resp: &http.Response{StatusCode: http.StatusNotModified, ContentLength: -1}},
		{name: "zero length", resp: &http.Response{StatusCode: http.StatusOK, ContentLength: 0}},
		{name: "head request", resp: &http.Response{
			StatusCode:    http.StatusOK,
			ContentLength: 42,
			Request:       &http.Request{Method: http.MethodHead},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.resp.Header = http.Header{"Content-Encoding": []string{"gzip"}}
			tt.resp.Body = http.NoBody
			require.NoError(t, DecodeBody(tt.resp))
			assert.Equal(t, http.NoBody, tt.resp.Body)
			assert.False(t, tt.resp.Uncompressed)
		})
	}
}

func TestDecodingTransport_EmptyGzipResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "empty ok", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", "gzip")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := &http.Client{Transport: NewDecodingTransport(nil)}
			resp, err := client.Get(srv.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Empty(t, b)
		})
	}
}
