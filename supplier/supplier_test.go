package supplier

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// newTestClient serves handler over an in-memory listener
func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	hc := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}

	c, err := NewClient("http://vendor.test/v2/", "key-123", WithHTTPClient(hc), WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestFitment(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		assert.Equal(t, "/v2/fitment/toyota/camry/2020", string(ctx.Path()))
		assert.Equal(t, "Bearer key-123", string(ctx.Request.Header.Peek("Authorization")))
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"data":[{"boltPattern":"5x114.3","oemTires":[{"width":215,"height":55,"diam":17}]}]}`)
	})

	records, err := c.Fitment(context.Background(), "toyota", "camry", "2020")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "5x114.3", records[0].BoltPattern.String())
	assert.Equal(t, "17", records[0].OEMTires[0].Diam.String())

	c.fitments.Wait()
	_, err = c.Fitment(context.Background(), "toyota", "camry", "2020")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFitment_NotFound(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	})

	records, err := c.Fitment(context.Background(), "lada", "unknown", "1990")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFitment_ServerError(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
		ctx.SetBodyString("upstream down")
	})

	_, err := c.Fitment(context.Background(), "toyota", "camry", "2020")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, fasthttp.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)
}

func TestFitment_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		t.Error("request should not be sent")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fitment(ctx, "toyota", "camry", "2020")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModelsAndSearch(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/v2/brands/toyota/models":
			ctx.SetBodyString(`{"data":[{"slug":"camry","name":"Camry"},{"slug":"corolla","name":"Corolla"}]}`)
		case "/v2/search":
			assert.Equal(t, "cam ry", string(ctx.QueryArgs().Peek("q")))
			ctx.SetBodyString(`{"data":[{"slug":"camry","name":"Camry","brand_slug":"toyota","brand_name":"Toyota"}]}`)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	models, err := c.Models(context.Background(), "toyota")
	require.NoError(t, err)
	assert.Len(t, models, 2)

	found, err := c.Search(context.Background(), " cam ry ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "toyota", found[0].BrandSlug)

	short, err := c.Search(context.Background(), "c")
	require.NoError(t, err)
	assert.Empty(t, short)
}
