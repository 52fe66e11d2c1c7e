package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/navigation"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/pathconfig"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/webshell/backend/internal/shell"
)

const start = "https://example.com/home"

type nopEngine struct{}

func (nopEngine) LoadURL(string)                              {}
func (nopEngine) Reload()                                     {}
func (nopEngine) VisitLocation(string, visit.Options, string) {}
func (nopEngine) InstallBridge()                              {}

type fixture struct {
	router   *gin.Engine
	registry *shell.Registry
	shell    *shell.Shell
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := pathconfig.New(pathconfig.Config{})
	cfg.Apply(&pathconfig.Document{
		Settings: pathconfig.Settings{"tabs": "home,feed"},
		Rules: []pathconfig.Rule{
			{Patterns: []string{".*"}, Properties: pathconfig.Properties{"context": "default"}},
			{Patterns: []string{"/broken$"}, Properties: pathconfig.Properties{"uri": "hotwire://fragment/missing"}},
			{Patterns: []string{"/feature"}, Properties: pathconfig.Properties{"title": "Feature"}},
		},
	})

	registry := shell.NewRegistry(shell.Options{
		StartLocation: start,
		PathConfig:    cfg,
		Destinations:  navigation.Destinations{pathconfig.DefaultURI: navigation.KindScreen},
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(registry.CloseAll)

	s, err := registry.Open(ctx, nopEngine{})
	require.NoError(t, err)

	router := gin.New()
	NewHandlers(registry, cfg, client.New(client.Config{}), nil).Register(router)
	return &fixture{router: router, registry: registry, shell: s}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do("GET", "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 1, body["shells"])
	assert.Equal(t, "closed", body["origin_breaker"])
}

func TestListAndGetSessions(t *testing.T) {
	f := newFixture(t)

	w := f.do("GET", "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])

	w = f.do("GET", "/sessions/"+f.shell.ID().String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var in shell.Inspection
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &in))
	assert.Equal(t, f.shell.ID().String(), in.ID)
	require.Len(t, in.Backstack, 1)
	assert.Equal(t, start, in.Backstack[0].Location)

	assert.Equal(t, http.StatusNotFound, f.do("GET", "/sessions/shell_missing", "").Code)
}

func TestRouteSession(t *testing.T) {
	f := newFixture(t)
	path := "/sessions/" + f.shell.ID().String()

	w := f.do("POST", path+"/route", `{"location":"https://example.com/feature"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	in, err := f.shell.Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, in.Backstack, 2)
	assert.Equal(t, "https://example.com/feature", in.Backstack[1].Location)

	w = f.do("POST", path+"/route", `{"location":"https://example.com/broken"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["error"], "no destination registered")

	assert.Equal(t, http.StatusBadRequest, f.do("POST", path+"/route", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do("POST", "/sessions/shell_missing/route", `{"location":"x"}`).Code)
}

func TestRouteSessionWithOptions(t *testing.T) {
	f := newFixture(t)
	path := "/sessions/" + f.shell.ID().String()

	require.Equal(t, http.StatusAccepted, f.do("POST", path+"/route", `{"location":"https://example.com/feature"}`).Code)
	require.Equal(t, http.StatusAccepted, f.do("POST", path+"/route", `{"location":"https://example.com/other","options":{"action":"replace"}}`).Code)

	in, err := f.shell.Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, in.Backstack, 2)
	assert.Equal(t, "https://example.com/other", in.Backstack[1].Location)
	assert.Equal(t, visit.ActionReplace, in.Backstack[1].Options.Action)
}

func TestPopClearAndClose(t *testing.T) {
	f := newFixture(t)
	path := "/sessions/" + f.shell.ID().String()

	f.do("POST", path+"/route", `{"location":"https://example.com/a"}`)
	f.do("POST", path+"/route", `{"location":"https://example.com/b"}`)
	f.do("POST", path+"/route", `{"location":"https://example.com/c"}`)

	require.Equal(t, http.StatusAccepted, f.do("POST", path+"/pop", "").Code)
	in, err := f.shell.Inspect(context.Background())
	require.NoError(t, err)
	assert.Len(t, in.Backstack, 3)

	require.Equal(t, http.StatusAccepted, f.do("POST", path+"/clear", "").Code)
	in, err = f.shell.Inspect(context.Background())
	require.NoError(t, err)
	assert.Len(t, in.Backstack, 1)

	assert.Equal(t, http.StatusOK, f.do("DELETE", path, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do("DELETE", path, "").Code)
	assert.Equal(t, 0, f.registry.Count())
}

func TestPathConfiguration(t *testing.T) {
	f := newFixture(t)

	w := f.do("GET", "/path-configuration?location=https://example.com/feature", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	settings := body["settings"].(map[string]any)
	assert.Equal(t, "home,feed", settings["tabs"])
	props := body["properties"].(map[string]any)
	assert.Equal(t, "Feature", props["title"])
	assert.Equal(t, "default", props["context"])
}
