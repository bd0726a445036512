// internal/httpserver/server.go
//
// HTTP server wiring for the versus backend.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, JSON, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Room endpoints: mounted under /rooms (routes_rooms.go).
//   - Match history: mounted under /history when a history store is configured.
//
// Notes:
//   - Player endpoints authenticate with the per-room session token issued on
//     create/join (Authorization: Bearer, or ?token= for the websocket).
//   - Rejections carry {"error": kind, "message": ...} with a status derived
//     from the error kind.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/engine"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/history"
	"github.com/robalobadob/wordle/apps/versus-server/internal/hub"
	"github.com/robalobadob/wordle/apps/versus-server/internal/session"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Engine  *engine.Engine
	Hub     *hub.Hub
	Tokens  *session.Issuer
	Words   *words.Dictionary
	History *history.Store // optional
	Origin  string         // allowed browser origin for CORS
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	deps Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(deps Deps) *Server {
	s := &Server{r: chi.NewRouter(), deps: deps}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(requestIDLogger)
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(deps.Origin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-versus","endpoints":["/health","POST /rooms","/rooms/{code}/*","/history"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountRooms()
	if deps.History != nil {
		s.mountHistory()
	}

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	// Debug: word list counts
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.deps.Words.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "allowed": g})
	})

	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin; empty defaults to the Vite dev server.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDLogger tags the request logger with chi's request id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError maps a game error to its HTTP status; anything unclassified is
// logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := game.Kind(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorBody{Error: kind})
		return
	}
	writeJSON(w, status, errorBody{Error: kind, Message: err.Error()})
}

func statusFor(kind string) int {
	switch kind {
	case "room_not_found", "player_not_found":
		return http.StatusNotFound
	case "room_full", "duplicate_player", "invalid_state", "player_inactive":
		return http.StatusConflict
	case "invalid_attempt", "invalid_word", "invalid_username":
		return http.StatusBadRequest
	case "not_host":
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json", Message: msg})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: msg})
}

// bearer extracts a bearer token from the Authorization header, falling back
// to the token query parameter (browsers cannot set headers on websockets).
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

var errNoToken = errors.New("missing token")
