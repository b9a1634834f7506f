package server

import (
	"net/http"

	"filippo.io/csrf"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/taskscope/internal/auth"
	httpmiddleware "github.com/wolfeidau/taskscope/internal/http"
	"github.com/wolfeidau/taskscope/internal/logger"
	"github.com/wolfeidau/taskscope/internal/tasks"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HandlerConfig configures the middleware wrapped around the task API.
type HandlerConfig struct {
	Logger      zerolog.Logger
	Verifier    *auth.JWTVerifier
	CORSOrigins []string
	Tracing     bool
}

// Server serves the task API over JSON.
type Server struct {
	tasks *tasks.Service
}

// NewServer creates a new server for the given task service.
func NewServer(svc *tasks.Service) *Server {
	return &Server{tasks: svc}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(cfg HandlerConfig) (http.Handler, error) {
	protection := csrf.New()
	for _, origin := range cfg.CORSOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, err
		}
	}

	api := cfg.Verifier.Middleware()(s.routes())

	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/", httpmiddleware.LimitBody(httpmiddleware.MaxBodyBytes)(api))

	var handler http.Handler = protection.Handler(mux)
	handler = withCORS(cfg.CORSOrigins, handler)
	handler = logger.Requests(cfg.Logger)(handler)
	handler = httpmiddleware.RequestInfoMiddleware()(handler)

	if cfg.Tracing {
		handler = otelhttp.NewHandler(handler, "taskscope")
	}

	return handler, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /tasks", s.listTasks)
	mux.HandleFunc("POST /tasks", s.createTask)
	mux.HandleFunc("GET /tasks/{id}", s.getTask)
	mux.HandleFunc("PUT /tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /tasks/{id}", s.deleteTask)
	mux.HandleFunc("GET /audit-log", s.auditLog)

	return mux
}

// withCORS adds CORS support for browser clients of the API.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", httpmiddleware.RequestIDHeader},
		ExposedHeaders: []string{httpmiddleware.RequestIDHeader},
	})
	return middleware.Handler(h)
}
