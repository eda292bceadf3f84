package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/logger"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, log *logger.Logger) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      NewRouter(handler, log),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// NewRouter wires every route and middleware onto a mux router.
func NewRouter(h *Handler, log *logger.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(log))
	router.Use(RecoveryMiddleware(log))
	router.Use(CORSMiddleware)

	// A method matcher here would turn every unknown path into a 405.
	router.MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
		return r.Method == http.MethodOptions
	}).HandlerFunc(preflight)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/TestConnection", h.TestConnection).Methods("GET")

	// Teams
	router.HandleFunc("/Teams", h.GetTeams).Methods("GET")
	router.HandleFunc("/Teams", h.PostTeam).Methods("POST")
	router.HandleFunc("/Teams/ByName/{name}", h.GetTeamsByName).Methods("GET")
	router.HandleFunc("/Teams/{id:[0-9]+}", h.GetTeam).Methods("GET")
	router.HandleFunc("/Teams/{id:[0-9]+}", h.DeleteTeam).Methods("DELETE")

	// Players
	router.HandleFunc("/Players", h.GetPlayers).Methods("GET")
	router.HandleFunc("/Players", h.PostPlayer).Methods("POST")
	router.HandleFunc("/Players/{id:[0-9]+}", h.GetPlayer).Methods("GET")
	router.HandleFunc("/Players/{id:[0-9]+}", h.DeletePlayer).Methods("DELETE")

	// Games
	router.HandleFunc("/Games", h.GetGames).Methods("GET")
	router.HandleFunc("/Games", h.PostGame).Methods("POST")
	router.HandleFunc("/Games/{id:[0-9]+}", h.GetGame).Methods("GET")
	router.HandleFunc("/Games/{id:[0-9]+}", h.DeleteGame).Methods("DELETE")

	// Stats
	router.HandleFunc("/Stats", h.GetStats).Methods("GET")
	router.HandleFunc("/Stats", h.PostStat).Methods("POST")
	router.HandleFunc("/Stats/Action", h.PostStatAction).Methods("POST")
	router.HandleFunc("/Stats/Correction", h.PostStatCorrection).Methods("POST")
	router.HandleFunc("/Stats/{id:[0-9]+}", h.GetStat).Methods("GET")
	router.HandleFunc("/Stats/{id:[0-9]+}", h.DeleteStat).Methods("DELETE")
	router.HandleFunc("/Stats/Player/{id:[0-9]+}", h.GetPlayerTotals).Methods("GET")
	router.HandleFunc("/Stats/Game/{id:[0-9]+}", h.GetGameStats).Methods("GET")
	router.HandleFunc("/Stats/GameScore/{id:[0-9]+}", h.GetGameScore).Methods("GET")
	router.HandleFunc("/Stats/Team/{teamId:[0-9]+}/Game/{gameId:[0-9]+}", h.GetTeamGameStats).Methods("GET")
	router.HandleFunc("/Stats/Team/{teamId:[0-9]+}/AllTime", h.GetTeamAllTime).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found.")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
