// Package gzippedhttp provides the gzip middlewares of the API: request
// bodies sent with "Content-Encoding: gzip" are inflated before the
// handler reads them, and JSON responses are compressed for clients that
// send "Accept-Encoding: gzip".
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressedReader inflates a gzip request body.
type CompressedReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

// NewCompressedReader fails when the body does not start with a valid
// gzip header.
func NewCompressedReader(requestBody io.ReadCloser) (*CompressedReader, error) {
	zippedRequestBody, err := gzip.NewReader(requestBody)
	if err != nil {
		return nil, err
	}

	return &CompressedReader{
		r:  requestBody,
		zr: zippedRequestBody,
	}, nil
}

func (c *CompressedReader) Read(p []byte) (n int, err error) {
	return c.zr.Read(p)
}

// Close closes both the gzip reader and the original body.
func (c *CompressedReader) Close() error {
	if err := c.zr.Close(); err != nil {
		_ = c.r.Close()
		return err
	}
	return c.r.Close()
}

// JSONResponseCompressor decides on the first WriteHeader (or Write)
// whether the body is compressed: only successful JSON responses are.
type JSONResponseCompressor struct {
	w           http.ResponseWriter
	zw          *gzip.Writer
	decided     bool
	compressing bool
}

// NewJSONResponseCompressor wraps w.
func NewJSONResponseCompressor(w http.ResponseWriter) *JSONResponseCompressor {
	return &JSONResponseCompressor{w: w}
}

// Header returns the headers of the wrapped response.
func (c *JSONResponseCompressor) Header() http.Header {
	return c.w.Header()
}

// WriteHeader picks the encoding and sends the status line.
func (c *JSONResponseCompressor) WriteHeader(statusCode int) {
	if !c.decided {
		c.decided = true
		contentType := c.w.Header().Get("Content-Type")
		if statusCode < 300 && strings.Contains(contentType, "application/json") {
			c.compressing = true
			c.w.Header().Set("Content-Encoding", "gzip")
			c.w.Header().Del("Content-Length")
			c.zw = gzipWriterPool.Get().(*gzip.Writer)
			c.zw.Reset(c.w)
		}
	}
	c.w.WriteHeader(statusCode)
}

func (c *JSONResponseCompressor) Write(p []byte) (int, error) {
	if !c.decided {
		c.WriteHeader(http.StatusOK)
	}
	if !c.compressing {
		return c.w.Write(p)
	}
	return c.zw.Write(p)
}

// Close flushes the gzip stream, if any, and returns the writer to the pool.
func (c *JSONResponseCompressor) Close() error {
	if !c.compressing {
		return nil
	}
	err := c.zw.Close()
	gzipWriterPool.Put(c.zw)
	c.zw = nil
	c.compressing = false

	return err
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// CompressJSONResponse gzips JSON responses when the client accepts it.
func CompressJSONResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		response.Header().Add("Vary", "Accept-Encoding")
		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		compressor := NewJSONResponseCompressor(response)
		defer compressor.Close()

		h.ServeHTTP(compressor, request)
	}

	return http.HandlerFunc(middleware)
}

// DecompressRequest replaces a gzip request body with an inflating reader.
// A body that is not valid gzip is rejected with 400.
func DecompressRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		body, err := NewCompressedReader(request.Body)
		if err != nil {
			http.Error(response, "malformed gzip body", http.StatusBadRequest)
			return
		}
		request.Body = body
		request.Header.Del("Content-Encoding")
		defer body.Close()

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
