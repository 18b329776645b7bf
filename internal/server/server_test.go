package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "pong")
	})
	srv := New(handler, Options{ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errs := srv.Serve(ln)

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	err, open := <-errs
	assert.NoError(t, err)
	assert.False(t, open)
}

func TestServer_StartFailsOnBadAddress(t *testing.T) {
	srv := New(http.NotFoundHandler(), Options{Address: "256.0.0.1:bad"}, zap.NewNop())

	_, err := srv.Start()
	assert.Error(t, err)
}
