package httpcontext

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestAttach_KeepsIncomingRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set("X-Request-ID", "req-42")
	rc.Request.Header.SetUserAgent("curl/8")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	assert.Equal(t, "req-42", string(rc.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "curl/8", ctx.Value(KeyUserAgent))
	_, ok := ctx.Deadline()
	assert.True(t, ok)
}

func TestAttach_GeneratesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx

	_, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()

	_, err := uuid.Parse(string(rc.Response.Header.Peek("X-Request-ID")))
	require.NoError(t, err)
}
