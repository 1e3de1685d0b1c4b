package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/balaji-balu/lizzy-client/internal/api/store"
	"github.com/balaji-balu/lizzy-client/pkg/model"
)

const (
	headerOutput  = "X-Lizzy-Output"
	headerVersion = "X-Lizzy-Version"
)

// Request is a request as the agent received it.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Recorder keeps every request for later inspection.
type Recorder struct {
	mu       sync.Mutex
	requests []Request
}

func (r *Recorder) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		r.mu.Lock()
		r.requests = append(r.requests, Request{
			Method:   c.Request.Method,
			Path:     c.Request.URL.Path,
			RawQuery: c.Request.URL.RawQuery,
			Header:   c.Request.Header.Clone(),
			Body:     body,
		})
		r.mu.Unlock()
		c.Next()
	}
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

// Last is the most recent request.
func (r *Recorder) Last() (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return Request{}, false
	}
	return r.requests[len(r.requests)-1], true
}

// BearerAuth rejects requests without the expected token. An empty token
// accepts any bearer.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || (token != "" && auth != "Bearer "+token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorBody{
				Detail: "Unauthorized",
				Status: http.StatusUnauthorized,
				Title:  "Unauthorized",
			})
			return
		}
		c.Next()
	}
}

// Envelope adds the version and output headers the agent sends with every
// response. output is escaped the way the agent ships multi-line logs.
func Envelope(version func() string, output func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v := version(); v != "" {
			c.Header(headerVersion, v)
		}
		if out := output(); out != "" {
			c.Header(headerOutput, strings.ReplaceAll(out, "\n", `\n`))
		}
		c.Next()
	}
}

// Failures answers with the store's canned failures before any handler runs.
func Failures(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := st.TakeFailure()
		if !ok {
			c.Next()
			return
		}
		c.Data(f.Code, "application/json", []byte(f.Body))
		c.Abort()
	}
}
