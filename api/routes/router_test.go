package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caec/caec-backend/internal/auth"
	"github.com/caec/caec-backend/internal/contacts"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/telemetry"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/auth/session"
	"github.com/caec/caec-backend/pkg/config"
	"github.com/caec/caec-backend/pkg/db/dbtest"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"github.com/caec/caec-backend/pkg/logger"
	"github.com/caec/caec-backend/pkg/metrics"
	"github.com/caec/caec-backend/pkg/types"
	"github.com/caec/caec-backend/web"
)

type envelope struct {
	types.Envelope
	Data json.RawMessage `json:"data,omitempty"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	client := dbtest.Open(t)
	cfg := &config.Config{
		App:       config.AppConfig{Env: "test"},
		Session:   config.SessionConfig{Secret: "router-test-session-secret", Name: "caec_session", MaxAgeDays: 30},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Telemetry: config.TelemetryConfig{StreamInterval: 20 * time.Millisecond},
	}
	logg := logger.Nop()

	sessions, err := session.NewManager(cfg.Session)
	require.NoError(t, err)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	systemsSvc, err := systems.NewService(systems.ServiceParams{DB: client})
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{UserRepo: users.NewRepository(client.DB()), Systems: systemsSvc})
	require.NoError(t, err)
	registerSvc, err := auth.NewRegisterService(auth.RegisterServiceParams{DB: client})
	require.NoError(t, err)
	profiles, err := contacts.NewService(contacts.ServiceParams{DB: client})
	require.NoError(t, err)
	telemetrySvc, err := telemetry.NewService(telemetry.ServiceParams{
		Systems: systemsSvc,
		Sensors: telemetry.NewSensorRepository(client.DB()),
		Configs: telemetry.NewMemoryConfigStore(),
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	handler := NewRouter(RouterParams{
		Config:    cfg,
		Logger:    logg,
		DB:        client,
		Sessions:  sessions,
		Renderer:  renderer,
		Metrics:   metrics.NewHTTPMetrics(reg),
		Gatherer:  reg,
		Auth:      authSvc,
		Register:  registerSvc,
		Profiles:  profiles,
		Systems:   systemsSvc,
		Telemetry: telemetrySvc,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func doJSON(t *testing.T, c *http.Client, method, url, body string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(target, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const registerBody = `{"nombre":"Ana","apellido":"Ruiz","email":"Ana@Caec.io","password":"secreto","confirm_password":"secreto"}`

func TestAPIRequiresSession(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	for _, path := range []string{"/api/profile", "/api/systems", "/api/system-data", "/api/irrigation-config"} {
		resp, env := doJSON(t, c, http.MethodGet, srv.URL+path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "UNAUTHORIZED", env.Code, path)
		assert.False(t, env.Success, path)
	}
}

func TestPagesRedirectWithoutSession(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	for _, path := range []string{"/inicio", "/add-system"} {
		resp, err := c.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestRegisterLinkAndDashboardFlow(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	resp, env := doJSON(t, c, http.MethodPost, srv.URL+"/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var user users.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "ana@caec.io", user.Email)

	resp, env = doJSON(t, c, http.MethodGet, srv.URL+"/api/session", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"authenticated":true,"user_id":`+strconv.FormatInt(user.ID, 10)+`,"email":"ana@caec.io"}`, string(env.Data))

	// no active system yet
	dash, err := c.Get(srv.URL + "/inicio")
	require.NoError(t, err)
	dash.Body.Close()
	assert.Equal(t, "/add-system", dash.Header.Get("Location"))

	resp, env = doJSON(t, c, http.MethodPost, srv.URL+"/api/systems/validate", `{"codigo_sistema":" CAEC-2024-0001 "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	link := postForm(t, c, srv.URL+"/add-system", url.Values{"codigo_sistema": {"CAEC-2024-0001 "}, "nombre_sistema": {"Huerta"}})
	require.Equal(t, http.StatusFound, link.StatusCode)
	assert.Equal(t, "/inicio", link.Header.Get("Location"))

	dash, err = c.Get(srv.URL + "/inicio")
	require.NoError(t, err)
	defer dash.Body.Close()
	require.Equal(t, http.StatusOK, dash.StatusCode)

	resp, env = doJSON(t, c, http.MethodGet, srv.URL+"/api/system-data", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data telemetry.SystemData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "CAEC-2024-0001", data.SystemCode)
	assert.Equal(t, "Huerta", data.SystemName)
	assert.Equal(t, 75.0, data.WaterLevel)

	// a second user cannot claim the same code
	other := newClient(t)
	resp, _ = doJSON(t, other, http.MethodPost, srv.URL+"/api/auth/register",
		`{"nombre":"Luis","apellido":"Paz","email":"luis@caec.io","password":"secreto"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, env = doJSON(t, other, http.MethodPost, srv.URL+"/api/systems/link", `{"codigo_sistema":"CAEC-2024-0001"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestLoginFormFlow(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	resp, _ := doJSON(t, c, http.MethodPost, srv.URL+"/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_, _ = doJSON(t, c, http.MethodPost, srv.URL+"/api/auth/logout", "")

	fresh := newClient(t)
	bad := postForm(t, fresh, srv.URL+"/login", url.Values{"email": {"ana@caec.io"}, "password": {"wrong!"}})
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)

	ok := postForm(t, fresh, srv.URL+"/login", url.Values{"email": {"ANA@caec.io"}, "password": {"secreto"}, "remember": {"on"}})
	require.Equal(t, http.StatusFound, ok.StatusCode)
	assert.Equal(t, "/add-system", ok.Header.Get("Location"))

	var remembered bool
	for _, ck := range ok.Cookies() {
		if ck.Name == "caec_session" && ck.MaxAge > 0 {
			remembered = true
		}
	}
	assert.True(t, remembered, "remember should persist the cookie")

	page, err := fresh.Get(srv.URL + "/login")
	require.NoError(t, err)
	page.Body.Close()
	assert.Equal(t, http.StatusFound, page.StatusCode)
	assert.Equal(t, "/inicio", page.Header.Get("Location"))

	out, err := fresh.Get(srv.URL + "/logout")
	require.NoError(t, err)
	out.Body.Close()
	assert.Equal(t, "/login", out.Header.Get("Location"))

	resp, env := doJSON(t, fresh, http.MethodGet, srv.URL+"/api/session", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"authenticated":false}`, string(env.Data))
}

func TestJSONLoginReportsRedirect(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	resp, _ := doJSON(t, c, http.MethodPost, srv.URL+"/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := doJSON(t, newClient(t), http.MethodPost, srv.URL+"/api/auth/login", `{"email":"ana@caec.io","password":"secreto"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Redirect  string `json:"redirect"`
		HasSystem bool   `json:"has_system"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "/add-system", body.Redirect)
	assert.False(t, body.HasSystem)

	resp, env = doJSON(t, newClient(t), http.MethodPost, srv.URL+"/api/auth/login", `{"email":"ana@caec.io","password":"nope12"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", env.Message)

	resp, env = doJSON(t, newClient(t), http.MethodPost, srv.URL+"/api/auth/login", `{"email":"ana@caec.io","password":""}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(pkgerrors.CodeUnauthorized), env.Code)
	assert.Equal(t, "invalid credentials", env.Message)
}

func TestProfileAndIrrigationEndpoints(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	resp, _ := doJSON(t, c, http.MethodPost, srv.URL+"/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := doJSON(t, c, http.MethodPut, srv.URL+"/api/profile", `{"ciudad":"Quito","telefono":"0999"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var profile contacts.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	require.NotNil(t, profile.Contact)
	require.NotNil(t, profile.Contact.Ciudad)
	assert.Equal(t, "Quito", *profile.Contact.Ciudad)

	resp, env = doJSON(t, c, http.MethodPut, srv.URL+"/api/profile", `{"unknown":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	resp, env = doJSON(t, c, http.MethodGet, srv.URL+"/api/irrigation-config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"config":{"savingPower":40,"savingDuration":15,"abundantDuration":5},"is_default":true}`, string(env.Data))

	resp, env = doJSON(t, c, http.MethodPost, srv.URL+"/api/update-irrigation-config",
		`{"config":{"savingPower":60,"savingDuration":20,"abundantDuration":8}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = doJSON(t, c, http.MethodPost, srv.URL+"/api/update-irrigation-config",
		`{"config":{"savingPower":160,"savingDuration":20,"abundantDuration":8}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = doJSON(t, c, http.MethodPost, srv.URL+"/api/update-system", `{"irrigation":{"status":false}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Configuración actualizada", env.Message)
}

func TestSystemDataStreamPushesSnapshots(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	resp, _ := doJSON(t, c, http.MethodPost, srv.URL+"/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, ck := range c.Jar.Cookies(u) {
		header.Add("Cookie", ck.String())
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/system-data/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var data telemetry.SystemData
		require.NoError(t, conn.ReadJSON(&data))
		assert.Equal(t, telemetry.SourceStatic, data.Source)
	}

	_, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
	assert.Error(t, err, "stream requires a session")
}

func TestHealthMetricsAndStatic(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	resp, env := doJSON(t, c, http.MethodGet, srv.URL+"/health/ready", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"database":"ok","redis":"disabled","status":"ready"}`, string(env.Data))
	assert.Equal(t, "test", resp.Header.Get("X-CAEC-Env"))

	metricsResp, err := c.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	require.Equal(t, http.StatusOK, metricsResp.StatusCode)
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, metricsResp.Body)
	assert.Contains(t, buf.String(), `caec_http_requests_total{method="GET",route="/health/ready",status="200"} 1`)

	static, err := c.Get(srv.URL + "/static/js/dashboard.js")
	require.NoError(t, err)
	static.Body.Close()
	assert.Equal(t, http.StatusOK, static.StatusCode)
}
