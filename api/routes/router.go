package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caec/caec-backend/api/controllers"
	"github.com/caec/caec-backend/api/middleware"
	"github.com/caec/caec-backend/internal/auth"
	"github.com/caec/caec-backend/internal/contacts"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/telemetry"
	"github.com/caec/caec-backend/pkg/auth/session"
	"github.com/caec/caec-backend/pkg/config"
	"github.com/caec/caec-backend/pkg/db"
	"github.com/caec/caec-backend/pkg/logger"
	"github.com/caec/caec-backend/pkg/metrics"
	"github.com/caec/caec-backend/web"
)

type sessionManager interface {
	session.Reader
	Start(w http.ResponseWriter, r *http.Request, p session.Principal, remember bool) error
	End(w http.ResponseWriter, r *http.Request) error
}

// RouterParams carries everything NewRouter wires. RedisPinger may be nil
// when redis is not configured.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	RedisPinger db.Pinger
	Sessions    sessionManager
	Renderer    *web.Renderer
	Metrics     *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth      auth.Service
	Register  auth.RegisterService
	Profiles  contacts.Service
	Systems   systems.Service
	Telemetry telemetry.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.RedisPinger))
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Handle("/static/*", web.Static())

	pages := controllers.PageDeps{
		Renderer: p.Renderer,
		Sessions: p.Sessions,
		Auth:     p.Auth,
		Register: p.Register,
		Systems:  p.Systems,
		Profiles: p.Profiles,
		Logger:   logg,
	}
	r.Get("/", controllers.Landing(pages))
	r.Get("/login", controllers.LoginPage(pages))
	r.Post("/login", controllers.LoginSubmit(pages))
	r.Get("/register", controllers.RegisterPage(pages))
	r.Post("/register", controllers.RegisterSubmit(pages))
	r.Get("/logout", controllers.Logout(pages))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageSession(p.Sessions, logg))
		r.Get("/inicio", controllers.Dashboard(pages))
		r.Get("/add-system", controllers.AddSystemPage(pages))
		r.Post("/add-system", controllers.AddSystemSubmit(pages))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(p.Register, p.Sessions, logg))
			r.Post("/login", controllers.AuthLogin(p.Auth, p.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(p.Sessions, logg))
		})
		r.Get("/session", controllers.SessionStatus(p.Sessions))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(p.Sessions, logg))

			r.Get("/profile", controllers.ProfileGet(p.Profiles, logg))
			r.Put("/profile", controllers.ProfileUpdate(p.Profiles, logg))

			r.Route("/systems", func(r chi.Router) {
				r.Get("/", controllers.SystemsList(p.Systems, logg))
				r.Post("/validate", controllers.SystemsValidate(p.Systems, logg))
				r.Post("/link", controllers.SystemsLink(p.Systems, logg))
				r.Post("/switch", controllers.SystemsSwitch(p.Systems, logg))
				r.Post("/{systemId}/sync", controllers.SystemsSync(p.Systems, logg))
			})

			r.Get("/system-data", controllers.SystemData(p.Telemetry, logg))
			r.Get("/system-data/stream", controllers.SystemDataStream(controllers.StreamParams{
				Service:  p.Telemetry,
				Interval: cfg.Telemetry.StreamInterval,
				Metrics:  p.Metrics,
				Logger:   logg,
			}))
			r.Post("/update-system", controllers.UpdateSystem(p.Telemetry, logg))
			r.Post("/update-irrigation-config", controllers.UpdateIrrigationConfig(p.Telemetry, logg))
			r.Get("/irrigation-config", controllers.IrrigationConfig(p.Telemetry, logg))
		})
	})

	return r
}
