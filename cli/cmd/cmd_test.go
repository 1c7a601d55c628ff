package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/hookline/hookline/common/client"
	"github.com/hookline/hookline/common/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test command initialization and registration
func TestCommandsRegistered(t *testing.T) {
	cfg = config.DefaultCLI()

	require.NotNil(t, rootCmd)

	expected := []string{"login", "logout", "whoami", "project", "sources", "events", "deliveries", "subscriptions"}
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "expected command %q to be registered", name)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	tests := []struct {
		parent *cobra.Command
		want   []string
	}{
		{projectCmd, []string{"use", "show"}},
		{sourcesCmd, []string{"create"}},
		{eventsCmd, []string{"list", "get", "replay"}},
		{deliveriesCmd, []string{"list", "get", "resend", "batch-retry", "count", "force-resend"}},
		{subscriptionsCmd, []string{"list", "get", "create", "update", "delete", "toggle"}},
	}

	for _, tt := range tests {
		t.Run(tt.parent.Name(), func(t *testing.T) {
			names := map[string]bool{}
			for _, c := range tt.parent.Commands() {
				names[c.Name()] = true
			}
			for _, want := range tt.want {
				assert.True(t, names[want], "%s should have %q", tt.parent.Name(), want)
			}
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "profile", "output", "timeout", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

// resetFlags restores every flag to its default so commands can run more
// than once in a test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

var cliMu sync.Mutex

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cliMu.Lock()
	defer cliMu.Unlock()

	resetFlags(rootCmd)

	var buf bytes.Buffer
	oldOut, oldErr, oldNoColor := output.Out, output.ErrOut, color.NoColor
	output.Out, output.ErrOut, color.NoColor = &buf, &buf, true
	defer func() {
		output.Out, output.ErrOut, color.NoColor = oldOut, oldErr, oldNoColor
	}()

	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Auth   string
	Body   string
}

// fakeAPI records every request and answers with status and body.
func fakeAPI(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
			Body:   string(b),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func login(t *testing.T, apiURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err := runCLI(t, "login", "--config", path, "--api-url", apiURL, "--api-key", "key-1", "--group", "proj-123")
	require.NoError(t, err, out)
	return path
}

func TestLogin_SavesProfile(t *testing.T) {
	path := login(t, "http://api.example.com/api/v1/")

	saved, err := config.LoadCLI(path)
	require.NoError(t, err)
	p, err := saved.GetProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com/api/v1", p.APIURL)
	assert.Equal(t, "key-1", p.APIKey)
	assert.Equal(t, "proj-123", p.GroupID)

	out, err := runCLI(t, "whoami", "--config", path, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"group_id": "proj-123"`)
	assert.NotContains(t, out, `"key-1"`)

	_, err = runCLI(t, "logout", "--config", path)
	require.NoError(t, err)
	_, err = runCLI(t, "whoami", "--config", path)
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
}

func TestLogin_RequiresFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runCLI(t, "login", "--config", path, "--api-key", "key-1")
	assert.Error(t, err)
}

func TestSourcesCreate_FromFlags(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusCreated,
		`{"status":true,"message":"Source created successfully","data":{"uid":"src-1","name":"webhook-1","type":"http"}}`)
	path := login(t, server.URL)

	out, err := runCLI(t, "sources", "create", "--config", path, "--name", "webhook-1", "-o", "json")
	require.NoError(t, err, out)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/sources", req.Path)
	assert.Equal(t, []string{"proj-123"}, req.Query["groupId"])
	assert.Equal(t, "Bearer key-1", req.Auth)
	assert.JSONEq(t, `{"name":"webhook-1","type":"http","is_disabled":false,"verifier":{"type":"noop"}}`, req.Body)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, "src-1", data["uid"])
}

func TestSourcesCreate_TableOutput(t *testing.T) {
	server, _ := fakeAPI(t, http.StatusCreated,
		`{"status":true,"message":"Source created successfully","data":{"uid":"src-1","name":"webhook-1","type":"http","verifier":{"type":"noop"}}}`)
	path := login(t, server.URL)

	out, err := runCLI(t, "sources", "create", "--config", path, "--name", "webhook-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Source created successfully")
	assert.Contains(t, out, "src-1")
	assert.Contains(t, out, "noop")
}

func TestSourcesCreate_FromFile(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusCreated, `{"success":true,"message":"ok","data":{"uid":"src-2"}}`)
	path := login(t, server.URL)

	doc := `{"name":"github","type":"http","provider":"github","custom":{"nested":[1,2]}}`
	file := filepath.Join(t.TempDir(), "source.json")
	require.NoError(t, os.WriteFile(file, []byte(doc), 0600))

	_, err := runCLI(t, "sources", "create", "--config", path, "--file", file)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.JSONEq(t, doc, (*requests)[0].Body, "file contents are sent untouched")
}

func TestSourcesCreate_BackendError(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusBadRequest, `{"status":false,"message":"name is required"}`)
	path := login(t, server.URL)

	_, err := runCLI(t, "sources", "create", "--config", path, "--name", "x")
	require.Error(t, err)
	assert.Len(t, *requests, 1)

	var reqErr *client.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	assert.Contains(t, err.Error(), "name is required")
}

func TestSourcesCreate_ValidationBeforeNetwork(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusCreated, `{"status":true}`)
	path := login(t, server.URL)

	tests := []struct {
		name string
		args []string
	}{
		{"no name", nil},
		{"hmac without secret", []string{"--name", "x", "--verifier", "hmac"}},
		{"basic auth without password", []string{"--name", "x", "--verifier", "basic_auth", "--username", "u"}},
		{"unknown verifier", []string{"--name", "x", "--verifier", "oauth"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"sources", "create", "--config", path}, tt.args...)
			_, err := runCLI(t, args...)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, *requests)
}

func TestSourcesCreate_NotLoggedIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runCLI(t, "sources", "create", "--config", path, "--name", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestProjectUse_ScopesLaterCalls(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusCreated, `{"status":true,"data":{"uid":"src-1"}}`)
	path := login(t, server.URL)

	_, err := runCLI(t, "project", "use", "proj-456", "--config", path)
	require.NoError(t, err)

	out, err := runCLI(t, "project", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "proj-456")

	_, err = runCLI(t, "sources", "create", "--config", path, "--name", "x", "-o", "json")
	require.NoError(t, err)
	require.Len(t, *requests, 1)
	assert.Equal(t, []string{"proj-456"}, (*requests)[0].Query["groupId"])
}

func TestEventsList(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusOK, `{"status":true,"message":"App events fetched successfully","data":{
		"content":[{"uid":"evt-1","event_type":"invoice.paid","app_metadata":{"title":"billing"},"created_at":"2026-01-02T03:04:05Z"}],
		"pagination":{"total":1,"page":1,"perPage":20,"totalPage":1}}}`)
	path := login(t, server.URL)

	out, err := runCLI(t, "events", "list", "--config", path, "--app", "app-1", "--start", "2026-01-01")
	require.NoError(t, err, out)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/events", req.Path)
	assert.Equal(t, []string{"app-1"}, req.Query["appId"])
	assert.Equal(t, []string{"2026-01-01T00:00:00"}, req.Query["startDate"])
	assert.Equal(t, []string{"proj-123"}, req.Query["groupId"])

	assert.Contains(t, out, "evt-1")
	assert.Contains(t, out, "invoice.paid")
	assert.Contains(t, out, "billing")
	assert.Contains(t, out, "2026-01-02 03:04:05")
	assert.Contains(t, out, "Page 1 of 1 (1 total)")
}

func TestEventsList_BadTime(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusOK, `{"status":true}`)
	path := login(t, server.URL)

	_, err := runCLI(t, "events", "list", "--config", path, "--start", "yesterday")
	assert.Error(t, err)
	assert.Empty(t, *requests)
}

func TestEventsReplay(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusOK, `{"status":true,"message":"App event replayed successfully"}`)
	path := login(t, server.URL)

	out, err := runCLI(t, "events", "replay", "evt-1", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "App event replayed successfully")

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPut, (*requests)[0].Method)
	assert.Equal(t, "/events/evt-1/replay", (*requests)[0].Path)
}

func TestDeliveries(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantMethod string
		wantPath   string
		wantQuery  map[string][]string
		wantBody   string
	}{
		{
			name:       "list with statuses",
			args:       []string{"deliveries", "list", "--status", "Failure", "--status", "Retry", "--event", "evt-1"},
			wantMethod: http.MethodGet,
			wantPath:   "/eventdeliveries",
			wantQuery:  map[string][]string{"status": {"Failure", "Retry"}, "eventId": {"evt-1"}},
		},
		{
			name:       "get",
			args:       []string{"deliveries", "get", "dlv-1"},
			wantMethod: http.MethodGet,
			wantPath:   "/eventdeliveries/dlv-1",
		},
		{
			name:       "resend",
			args:       []string{"deliveries", "resend", "dlv-1"},
			wantMethod: http.MethodPut,
			wantPath:   "/eventdeliveries/dlv-1/resend",
		},
		{
			name:       "batch retry",
			args:       []string{"deliveries", "batch-retry", "--status", "Failure"},
			wantMethod: http.MethodPost,
			wantPath:   "/eventdeliveries/batchretry",
			wantQuery:  map[string][]string{"status": {"Failure"}},
		},
		{
			name:       "count",
			args:       []string{"deliveries", "count", "--status", "Failure", "--app", "app-1"},
			wantMethod: http.MethodGet,
			wantPath:   "/eventdeliveries/countbatchretryevents",
			wantQuery:  map[string][]string{"status": {"Failure"}, "appId": {"app-1"}},
		},
		{
			name:       "force resend",
			args:       []string{"deliveries", "force-resend", "dlv-1", "dlv-2"},
			wantMethod: http.MethodPost,
			wantPath:   "/eventdeliveries/forceresend",
			wantBody:   `{"ids":["dlv-1","dlv-2"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := fakeAPI(t, http.StatusOK, `{"status":true,"message":"done","data":{"content":[]}}`)
			path := login(t, server.URL)

			_, err := runCLI(t, append(tt.args, "--config", path)...)
			require.NoError(t, err)

			require.Len(t, *requests, 1)
			req := (*requests)[0]
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, []string{"proj-123"}, req.Query["groupId"])
			for key, want := range tt.wantQuery {
				assert.Equal(t, want, req.Query[key], key)
			}
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, req.Body)
			}
		})
	}
}

func TestDeliveriesCount_PrintsNumber(t *testing.T) {
	server, _ := fakeAPI(t, http.StatusOK, `{"status":true,"message":"event deliveries count successful","data":{"num":3}}`)
	path := login(t, server.URL)

	out, err := runCLI(t, "deliveries", "count", "--status", "Failure", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 deliveries match")
}

func TestSubscriptions(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "subscription.json")
	require.NoError(t, os.WriteFile(docPath, []byte(`{"name":"orders","endpoint_id":"ep-9"}`), 0600))

	tests := []struct {
		name       string
		args       []string
		wantMethod string
		wantPath   string
		wantQuery  map[string][]string
		wantBody   string
	}{
		{
			name:       "list",
			args:       []string{"subscriptions", "list", "-q", "orders"},
			wantMethod: http.MethodGet,
			wantPath:   "/subscriptions",
			wantQuery:  map[string][]string{"q": {"orders"}},
		},
		{
			name:       "get",
			args:       []string{"subscriptions", "get", "sub-1"},
			wantMethod: http.MethodGet,
			wantPath:   "/subscriptions/sub-1",
		},
		{
			name:       "create from flags",
			args:       []string{"subscriptions", "create", "--name", "orders", "--app", "app-1", "--source", "src-1", "--endpoint", "ep-1"},
			wantMethod: http.MethodPost,
			wantPath:   "/subscriptions",
			wantBody:   `{"name":"orders","app_id":"app-1","source_id":"src-1","endpoint_id":"ep-1"}`,
		},
		{
			name:       "create from file",
			args:       []string{"subscriptions", "create", "--file", docPath},
			wantMethod: http.MethodPost,
			wantPath:   "/subscriptions",
			wantBody:   `{"name":"orders","endpoint_id":"ep-9"}`,
		},
		{
			name:       "update sends only given flags",
			args:       []string{"subscriptions", "update", "sub-1", "--endpoint", "ep-2"},
			wantMethod: http.MethodPut,
			wantPath:   "/subscriptions/sub-1",
			wantBody:   `{"endpoint_id":"ep-2"}`,
		},
		{
			name:       "delete",
			args:       []string{"subscriptions", "delete", "sub-1"},
			wantMethod: http.MethodDelete,
			wantPath:   "/subscriptions/sub-1",
		},
		{
			name:       "toggle",
			args:       []string{"subscriptions", "toggle", "sub-1"},
			wantMethod: http.MethodPut,
			wantPath:   "/subscriptions/sub-1/toggle_status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := fakeAPI(t, http.StatusOK, `{"status":true,"message":"done","data":{"uid":"sub-1","name":"orders"}}`)
			path := login(t, server.URL)

			out, err := runCLI(t, append(tt.args, "--config", path)...)
			require.NoError(t, err, out)

			require.Len(t, *requests, 1)
			req := (*requests)[0]
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, []string{"proj-123"}, req.Query["groupId"])
			for key, want := range tt.wantQuery {
				assert.Equal(t, want, req.Query[key], key)
			}
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, req.Body)
			}
		})
	}
}

func TestSubscriptions_ValidationBeforeNetwork(t *testing.T) {
	server, requests := fakeAPI(t, http.StatusOK, `{"status":true}`)
	path := login(t, server.URL)

	_, err := runCLI(t, "subscriptions", "create", "--app", "app-1", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name or --file is required")

	_, err = runCLI(t, "subscriptions", "update", "sub-1", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	assert.Empty(t, *requests)
}

func TestInvalidOutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runCLI(t, "whoami", "--config", path, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "****5678", maskKey("12345678"))
	assert.Equal(t, "***", maskKey("abc"))

	data := map[string]interface{}{
		"uid":      "x",
		"metadata": map[string]interface{}{"num_trials": float64(3)},
	}
	assert.Equal(t, "x", getString(data, "id", "uid"))
	assert.Equal(t, "3", getString(data, "metadata.num_trials"))
	assert.Empty(t, getString(data, "uid.nested"))
	assert.Empty(t, getString("not a map", "uid"))

	assert.Len(t, pageContent(map[string]interface{}{"content": []interface{}{1, 2}}), 2)
	assert.Len(t, pageContent([]interface{}{1}), 1)
	assert.Nil(t, pageContent("x"))

	_, err := parseTime("2026-01-02T03:04:05Z")
	assert.NoError(t, err)
	_, err = parseTime("nope")
	assert.Error(t, err)
}
