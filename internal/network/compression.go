// File: internal/network/compression.go
package network

import (
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

var brotliPool = sync.Pool{
	New: func() interface{} { return brotli.NewReader(nil) },
}

// DecodingTransport advertises br/gzip/deflate and transparently decodes the
// response body according to Content-Encoding.
type DecodingTransport struct {
	next http.RoundTripper
}

// NewDecodingTransport wraps next, defaulting to http.DefaultTransport.
func NewDecodingTransport(next http.RoundTripper) *DecodingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &DecodingTransport{next: next}
}

func (d *DecodingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", "br, gzip, deflate")
	}

	resp, err := d.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := DecodeBody(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return resp, nil
}

// DecodeBody replaces resp.Body with a decoding reader. Stacked encodings are
// unwound last-applied first. On error the body must be considered consumed.
func DecodeBody(resp *http.Response) error {
	if resp == nil || resp.Body == nil || bodyless(resp) {
		return nil
	}
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}

	for i := len(encodings) - 1; i >= 0; i-- {
		for _, layer := range reverse(strings.Split(encodings[i], ",")) {
			enc := strings.ToLower(strings.TrimSpace(layer))
			body, err := wrapDecoder(enc, resp.Body)
			if err != nil {
				return err
			}
			resp.Body = body
		}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// bodyless reports whether resp is known to carry no body, in which case a
// Content-Encoding header has nothing to decode.
func bodyless(resp *http.Response) bool {
	if resp.ContentLength == 0 {
		return true
	}
	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotModified:
		return true
	}
	return resp.Request != nil && resp.Request.Method == http.MethodHead
}

func wrapDecoder(enc string, src io.ReadCloser) (io.ReadCloser, error) {
	switch enc {
	case "", "identity":
		return src, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &layeredBody{Reader: zr, closers: []io.Closer{zr, src}}, nil
	case "deflate":
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		return &layeredBody{Reader: zr, closers: []io.Closer{zr, src}}, nil
	case "br":
		br := brotliPool.Get().(*brotli.Reader)
		if err := br.Reset(src); err != nil {
			brotliPool.Put(br)
			return nil, fmt.Errorf("brotli: %w", err)
		}
		return &layeredBody{Reader: br, closers: []io.Closer{src}, release: func() {
			_ = br.Reset(strings.NewReader(""))
			brotliPool.Put(br)
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported Content-Encoding %q", enc)
	}
}

// layeredBody closes the decoder and the wrapped body together.
type layeredBody struct {
	io.Reader
	closers []io.Closer
	release func()
	once    sync.Once
}

func (b *layeredBody) Close() error {
	var errs []error
	b.once.Do(func() {
		for _, c := range b.closers {
			errs = append(errs, c.Close())
		}
		if b.release != nil {
			b.release()
		}
	})
	return errors.Join(errs...)
}

func reverse(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
