package apiroutes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/t-hirai03/webmaka/email"
	"github.com/t-hirai03/webmaka/flow"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/pages"
	"github.com/t-hirai03/webmaka/ratelimit"
	"github.com/t-hirai03/webmaka/repository"
	"github.com/t-hirai03/webmaka/services"
	"github.com/t-hirai03/webmaka/types"
)

type okSender struct{}

func (okSender) Send(ctx context.Context, msg *types.OutgoingEmail) (string, error) {
	return "id", nil
}

func newTestEngine(t *testing.T, conf global.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	conf.ApplyDefaults()
	global.Conf = conf

	limiter := ratelimit.New(ratelimit.DefaultConfig)
	composer := email.NewComposer(conf.Email.From, conf.Site.Name, conf.Site.URL)
	cs := services.NewContactService(limiter, composer, "test", func() types.ContactSecrets {
		return types.ContactSecrets{APIKey: "k", ContactEmail: "owner@webmaka.com"}
	}).WithSenderFactory(func(apiKey string) (email.Sender, error) { return okSender{}, nil })
	f := flow.New(repository.NewMemorySnapshotStore(time.Hour), services.NewLocalContactClient(cs))
	return ConfigRoutes(gin.New(), cs, pages.NewContactPages(f, conf.Site.Name, false))
}

func TestRoutesWired(t *testing.T) {
	router := newTestEngine(t, global.Config{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"a","email":"a@b.co","message":"m"}`))
	req.RemoteAddr = "10.1.1.1:1000"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutesPlatformHeader(t *testing.T) {
	conf := global.Config{}
	conf.Contact.PlatformHeader = "X-Real-IP"
	router := newTestEngine(t, conf)

	body := `{"name":"a","email":"a@b.co","message":"m"}`
	send := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		req.Header.Set("X-Real-IP", ip)
		router.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send("203.0.113.5"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.5"))
	assert.Equal(t, http.StatusOK, send("203.0.113.6"))
}

func TestMetricsBasicAuth(t *testing.T) {
	conf := global.Config{}
	conf.Prometheus = global.PrometheusConfig{Enabled: true, Username: "prom", Password: "secret"}
	router := newTestEngine(t, conf)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contact_snapshots_swept_total")
}

func TestCorsPreflight(t *testing.T) {
	conf := global.Config{}
	conf.Cors.AllowOrigins = []string{"https://webmaka.com"}
	router := newTestEngine(t, conf)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "https://webmaka.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://webmaka.com", w.Header().Get("Access-Control-Allow-Origin"))
}
