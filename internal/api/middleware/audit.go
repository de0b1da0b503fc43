package middleware

import (
	"bytes"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

const (
	auditBodyLimit = 4096
	redactedValue  = "******"
)

// 请求与响应中需要脱敏的字段，大小写不敏感
var sensitiveFields = map[string]struct{}{
	"password":      {},
	"old_password":  {},
	"new_password":  {},
	"token":         {},
	"access_token":  {},
	"authorization": {},
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body      *bytes.Buffer
	truncated bool
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if room := auditBodyLimit - r.body.Len(); room > 0 {
		if len(b) > room {
			r.body.Write(b[:room])
			r.truncated = true
		} else {
			r.body.Write(b)
		}
	} else if len(b) > 0 {
		r.truncated = true
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseBodyWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// bodyReadCloser 先读回已缓存的前缀，再继续读原始请求体
type bodyReadCloser struct {
	io.Reader
	io.Closer
}

// AuditMiddleware 记录请求与响应，敏感字段脱敏，multipart 与超长内容只记录长度；
// maxBodyBytes > 0 时限制请求体大小
func AuditMiddleware(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if c.Request.Body != nil && maxBodyBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		reqBody := auditRequestBody(c)

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", redactQuery(c.Request.URL.RawQuery)),
			log.String("req_body", reqBody),
		)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w
		startTime := time.Now()

		c.Next()

		resBody := fmt.Sprintf("<truncated %d bytes>", w.Size())
		if !w.truncated {
			resBody = redactBody(w.body.Bytes(), w.Header().Get("Content-Type"))
		}
		log.InfoContext(ctx, "Send Response",
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("res_body", resBody),
		)
	}
}

// auditRequestBody 只预读前 auditBodyLimit 字节，读过的部分拼回请求体供后续处理
func auditRequestBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		return fmt.Sprintf("<%s %d bytes>", contentType, c.Request.ContentLength)
	}

	head, err := io.ReadAll(io.LimitReader(c.Request.Body, auditBodyLimit+1))
	c.Request.Body = bodyReadCloser{
		Reader: io.MultiReader(bytes.NewReader(head), c.Request.Body),
		Closer: c.Request.Body,
	}
	if err != nil {
		return fmt.Sprintf("<read failed: %v>", err)
	}
	if len(head) > auditBodyLimit {
		return fmt.Sprintf("<truncated %d bytes>", c.Request.ContentLength)
	}
	return redactBody(head, contentType)
}

// redactBody JSON 与表单做字段脱敏，其余类型只记录长度
func redactBody(data []byte, contentType string) string {
	if len(data) == 0 {
		return ""
	}
	switch {
	case strings.Contains(contentType, "json"):
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Sprintf("<invalid json %d bytes>", len(data))
		}
		out, err := json.Marshal(redactValue(v))
		if err != nil {
			return fmt.Sprintf("<invalid json %d bytes>", len(data))
		}
		return string(out)
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return redactQuery(string(data))
	default:
		return fmt.Sprintf("<%s %d bytes>", contentType, len(data))
	}
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			if isSensitive(k) {
				val[k] = redactedValue
				continue
			}
			val[k] = redactValue(item)
		}
	case []any:
		for i, item := range val {
			val[i] = redactValue(item)
		}
	}
	return v
}

func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "<invalid query>"
	}
	for k := range values {
		if isSensitive(k) {
			values[k] = []string{redactedValue}
		}
	}
	decoded, err := url.QueryUnescape(values.Encode())
	if err != nil {
		return values.Encode()
	}
	return decoded
}

func isSensitive(key string) bool {
	_, ok := sensitiveFields[strings.ToLower(key)]
	return ok
}
