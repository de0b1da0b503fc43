package response

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, ctx context.Context, err error) dto.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	Error(c, err)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestError_Classification(t *testing.T) {
	ctx := context.Background()

	resp := run(t, ctx, service.ErrFeedNotFound)
	assert.Equal(t, NotFound, resp.Code)
	assert.Equal(t, service.ErrFeedNotFound.Error(), resp.Message)

	resp = run(t, ctx, fmt.Errorf("wrapped: %w", service.ErrActionDuplicate))
	assert.Equal(t, BadRequest, resp.Code)
	assert.Equal(t, service.ErrActionDuplicate.Error(), resp.Message)

	resp = run(t, ctx, service.ErrRequestTimeout)
	assert.Equal(t, GatewayTimeout, resp.Code)

	resp = run(t, ctx, errors.New("boom"))
	assert.Equal(t, InternalServerError, resp.Code)
	assert.Equal(t, service.UnExpectedError.Error(), resp.Message)

	expired, cancel := context.WithTimeout(ctx, 0)
	defer cancel()
	<-expired.Done()
	resp = run(t, expired, errors.New("query canceled"))
	assert.Equal(t, GatewayTimeout, resp.Code)
}
