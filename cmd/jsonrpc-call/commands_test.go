package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenwencheng/jsonrpc/pkg/sign"
)

type serverRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     json.RawMessage `json:"id"`
}

// answer implements "add" over an array of integers; anything else is
// Method not found.
func answer(req serverRequest) string {
	if req.Method != "add" {
		return fmt.Sprintf(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"},"id":%s}`, req.ID)
	}
	var nums []int
	_ = json.Unmarshal(req.Params, &nums)
	sum := 0
	for _, n := range nums {
		sum += n
	}
	return fmt.Sprintf(`{"jsonrpc":"2.0","result":%d,"id":%s}`, sum, req.ID)
}

// createAddServer serves "add". When appSecret is set, requests must carry a
// valid HMAC signature.
func createAddServer(t *testing.T, appSecret string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var reqs []serverRequest
		batch := strings.HasPrefix(strings.TrimSpace(string(body)), "[")
		if batch {
			_ = json.Unmarshal(body, &reqs)
		} else {
			var req serverRequest
			_ = json.Unmarshal(body, &req)
			reqs = append(reqs, req)
		}

		if appSecret != "" {
			if err := sign.VerifyHMACHeaders(r.Header, appSecret, reqs[0].Params); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}

		var out []string
		for _, req := range reqs {
			if len(req.ID) > 0 {
				out = append(out, answer(req))
			}
		}
		switch {
		case len(out) == 0:
			w.WriteHeader(http.StatusNoContent)
		case batch:
			_, _ = w.Write([]byte("[" + strings.Join(out, ",") + "]"))
		default:
			_, _ = w.Write([]byte(out[0]))
		}
	}))
}

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestCallCmd(t *testing.T) {
	server := createAddServer(t, "sk")
	defer server.Close()

	useConfigDir(t, "")
	t.Setenv("JSONRPC_URL", server.URL)
	t.Setenv("JSONRPC_APP_KEY", "ak")
	t.Setenv("JSONRPC_APP_SECRET", "sk")
	t.Setenv("JSONRPC_LOG_LEVEL", "error")

	out, err := runCmd(t, "", "call", "add", "[2,3]", "--id", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `5`, out)

	_, err = runCmd(t, "", "call", "sub", "[2,3]")
	require.Error(t, err)
	assert.Equal(t, "Method not found (-32601)", err.Error())

	_, err = runCmd(t, "", "call", "add", "[2,")
	assert.EqualError(t, err, "params must be valid JSON")
}

func TestCallCmd_BadSignature(t *testing.T) {
	server := createAddServer(t, "other")
	defer server.Close()

	useConfigDir(t, "")
	t.Setenv("JSONRPC_APP_KEY", "ak")
	t.Setenv("JSONRPC_APP_SECRET", "sk")
	t.Setenv("JSONRPC_LOG_LEVEL", "error")

	_, err := runCmd(t, "", "--url", server.URL, "call", "add", "[2,3]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to connect to "+server.URL)
}

func TestNotifyCmd(t *testing.T) {
	server := createAddServer(t, "")
	defer server.Close()

	useConfigDir(t, "")
	t.Setenv("JSONRPC_URL", server.URL)
	t.Setenv("JSONRPC_LOG_LEVEL", "error")

	out, err := runCmd(t, "", "notify", "add", "[1]")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBatchCmd(t *testing.T) {
	server := createAddServer(t, "")
	defer server.Close()

	useConfigDir(t, "")
	t.Setenv("JSONRPC_URL", server.URL)
	t.Setenv("JSONRPC_LOG_LEVEL", "error")

	input := `[
		{"method":"add","params":[1,2]},
		{"method":"log","params":["x"],"notify":true},
		{"method":"nope"},
		{"method":"add","params":[10,20]}
	]`

	expect := `[
		{"id":1,"result":3},
		{"id":2,"error":{"code":-32601,"message":"Method not found"}},
		{"id":3,"result":30}
	]`

	out, err := runCmd(t, input, "batch")
	require.NoError(t, err)
	assert.JSONEq(t, expect, out)

	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	out, err = runCmd(t, "", "batch", path)
	require.NoError(t, err)
	assert.JSONEq(t, expect, out)

	_, err = runCmd(t, `[{"method":"add","params":[1,2]}]`, "batch", "-")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42", parseID("42").String())
	_, isInt := parseID("42").Int()
	assert.True(t, isInt)

	_, isInt = parseID("abc").Int()
	assert.False(t, isInt)
	assert.Equal(t, "abc", parseID("abc").String())
}

func TestCallCmd_TimeoutUnderAutoTransport(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":5,"id":1}`))
	}))
	defer server.Close()
	defer close(release)

	useConfigDir(t, "")
	t.Setenv("JSONRPC_URL", server.URL)
	t.Setenv("JSONRPC_TIMEOUT", "50ms")
	t.Setenv("JSONRPC_LOG_LEVEL", "error")

	out, err := runCmd(t, "", "call", "add", "[2,3]", "--id", "1")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "Unable to connect to "+server.URL)
}
