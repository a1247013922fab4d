package loginform

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// HandlerTransport returns a RoundTripper that serves every request with
// handler in the current process. Nothing goes over the network, so the
// request skips the listener's middleware such as per-IP rate limiting.
func HandlerTransport(handler http.Handler) http.RoundTripper {
	return &handlerTransport{handler: handler}
}

type handlerTransport struct {
	handler http.Handler
}

// RoundTrip implements http.RoundTripper
func (t *handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	inner := req.Clone(req.Context())
	inner.RequestURI = req.URL.RequestURI()
	if inner.Body == nil {
		inner.Body = http.NoBody
	}
	defer inner.Body.Close()

	rec := &responseRecorder{header: make(http.Header)}
	t.handler.ServeHTTP(rec, inner)

	return rec.response(req), nil
}

// responseRecorder buffers a handler's response
type responseRecorder struct {
	header      http.Header
	code        int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.code = code
	r.wroteHeader = true
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.WriteHeader(http.StatusOK)
	return r.body.Write(b)
}

func (r *responseRecorder) response(req *http.Request) *http.Response {
	r.WriteHeader(http.StatusOK)

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.code, http.StatusText(r.code)),
		StatusCode:    r.code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        r.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(r.body.Bytes())),
		ContentLength: int64(r.body.Len()),
		Request:       req,
	}
}
