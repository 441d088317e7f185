package jsonrpc_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenwencheng/jsonrpc/pkg/jsonrpc"
	"github.com/chenwencheng/jsonrpc/pkg/sign"
)

// createRPCServer serves EchoHandler over HTTP and records the last request
// headers.
func createRPCServer(t *testing.T, headers chan<- http.Header) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if headers != nil {
			headers <- r.Header.Clone()
		}

		out, err := EchoHandler(jsonrpc.Envelope{Body: body})
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"},"id":null}`))
			return
		}
		if len(out) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	}))
}

func TestHTTPTransport_Call(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	server := createRPCServer(t, headers)
	defer server.Close()

	signer, err := sign.NewHMACSigner("ak", "sk")
	require.NoError(t, err)

	client := jsonrpc.NewClient(server.URL, jsonrpc.WithSigner(signer))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := client.Call(ctx, "add", []int{2, 3})
	require.NoError(t, err)

	var out struct {
		Method string `json:"method"`
		Params []int  `json:"params"`
	}
	require.NoError(t, res.Translate(&out))
	assert.Equal(t, "add", out.Method)
	assert.Equal(t, []int{2, 3}, out.Params)

	h := <-headers
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "ak", h.Get(sign.HeaderAppKey))
	assert.NoError(t, sign.VerifyHMACHeaders(h, "sk", []byte(`[2,3]`)))
}

func TestHTTPTransport_Batch(t *testing.T) {
	t.Parallel()

	server := createRPCServer(t, nil)
	defer server.Close()

	client := jsonrpc.NewClient(server.URL)

	batch := client.Batch()
	_, err := batch.Call("a", []int{1})
	require.NoError(t, err)
	require.NoError(t, batch.Notify("b", nil))
	_, err = batch.Call("c", []int{3})
	require.NoError(t, err)

	res, err := batch.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Responses, 2)
	assert.Equal(t, jsonrpc.NewIntID(1), res.Responses[0].ID)
	assert.Equal(t, jsonrpc.NewIntID(2), res.Responses[1].ID)
}

func TestHTTPTransport_Notify(t *testing.T) {
	t.Parallel()

	server := createRPCServer(t, nil)
	defer server.Close()

	client := jsonrpc.NewClient(server.URL)
	assert.NoError(t, client.Notify(context.Background(), "log", []string{"hello"}))
}

func TestHTTPTransport_Failures(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		transport := jsonrpc.NewHTTPTransport(jsonrpc.DefaultHTTPTransportConfig)
		_, err := transport.Send(context.Background(), jsonrpc.Envelope{Method: http.MethodPost, URL: server.URL, Body: []byte(`{}`)})
		require.Error(t, err)
		assert.ErrorIs(t, err, jsonrpc.ErrUnableToConnect)
		assert.Contains(t, err.Error(), "Unable to connect to "+server.URL)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := jsonrpc.NewClient(url)
		_, err := client.Call(context.Background(), "add", []int{2, 3})
		require.Error(t, err)
		assert.ErrorIs(t, err, jsonrpc.ErrUnableToConnect)
		assert.Equal(t, jsonrpc.CategoryTransport, requireRPCError(t, err).Category)
	})

	t.Run("response over the size cap", func(t *testing.T) {
		t.Parallel()

		reply := `{"jsonrpc":"2.0","result":"` + strings.Repeat("x", 200) + `","id":1}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(reply))
		}))
		defer server.Close()

		cfg := jsonrpc.DefaultHTTPTransportConfig
		cfg.MaxResponseBytes = 64
		client := jsonrpc.NewClient(server.URL,
			jsonrpc.WithTransport(jsonrpc.NewHTTPTransport(cfg)),
			jsonrpc.WithIDGenerator(fixedID(1)),
		)

		_, err := client.Call(context.Background(), "get", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, jsonrpc.ErrResponseTooLarge)
		assert.NotErrorIs(t, err, jsonrpc.ErrParse)
		assert.Equal(t, jsonrpc.CategoryTransport, requireRPCError(t, err).Category)
		assert.Contains(t, err.Error(), "exceeds 64 bytes")

		cfg.MaxResponseBytes = int64(len(reply))
		client = jsonrpc.NewClient(server.URL,
			jsonrpc.WithTransport(jsonrpc.NewHTTPTransport(cfg)),
			jsonrpc.WithIDGenerator(fixedID(1)),
		)
		_, err = client.Call(context.Background(), "get", nil)
		assert.NoError(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		cfg := jsonrpc.DefaultHTTPTransportConfig
		cfg.Timeout = 50 * time.Millisecond
		client := jsonrpc.NewClient(server.URL, jsonrpc.WithTransport(jsonrpc.NewHTTPTransport(cfg)))

		_, err := client.Call(context.Background(), "slow", nil)
		assert.ErrorIs(t, err, jsonrpc.ErrUnableToConnect)
	})
}

func TestNewClient_NilTransportKeepsDefault(t *testing.T) {
	t.Parallel()

	server := createRPCServer(t, nil)
	defer server.Close()

	client := jsonrpc.NewClient(server.URL, jsonrpc.WithTransport(nil))
	res, err := client.Call(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Output)
}
