package logger

import (
	"bytes"
	"context"
	"io"
	log "log/slog"
	"net/http"
	"time"
)

const (
	esSlowThreshold = 500 * time.Millisecond
	esBodyLogLimit  = 1000
)

// ESTransport 记录每次 ES 请求；索引同步中预期内的 404(删除不存在的文档)与 409(外部版本过旧)按 Info 记录
type ESTransport struct {
	Transport http.RoundTripper
}

func (t *ESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	reqBody, err := drain(&req.Body)
	if err != nil {
		return nil, err
	}

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("method", req.Method),
		log.String("path", req.URL.Path),
		log.Duration("latency", elapsed),
		log.String("req_body", truncate(reqBody)),
	}
	if err != nil {
		log.ErrorContext(ctx, "ES_QUERY_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	resBody, err := drain(&resp.Body)
	if err != nil {
		return nil, err
	}
	fields = append(fields, log.Int("status", resp.StatusCode), log.String("res_body", truncate(resBody)))
	logESResponse(ctx, req.Method, resp.StatusCode, elapsed, fields)
	return resp, nil
}

func logESResponse(ctx context.Context, method string, status int, elapsed time.Duration, fields []any) {
	switch {
	case status >= http.StatusInternalServerError:
		log.ErrorContext(ctx, "ES_QUERY_FAILED", fields...)
	case status == http.StatusConflict,
		status == http.StatusNotFound && method == http.MethodDelete:
		log.InfoContext(ctx, "ES_QUERY_SKIPPED", fields...)
	case status >= http.StatusBadRequest:
		log.WarnContext(ctx, "ES_QUERY_REJECTED", fields...)
	case elapsed > esSlowThreshold:
		log.WarnContext(ctx, "ES_QUERY_SLOW", fields...)
	default:
		log.DebugContext(ctx, "ES_QUERY", fields...)
	}
}

// drain 读出 body 后放回一份可重复读取的副本
func drain(body *io.ReadCloser) ([]byte, error) {
	if *body == nil || *body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(*body)
	_ = (*body).Close()
	if err != nil {
		return nil, err
	}
	*body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func truncate(data []byte) string {
	if len(data) > esBodyLogLimit {
		return string(data[:esBodyLogLimit]) + "...[truncated]"
	}
	return string(data)
}
