// internal/httpserver/routes_rooms.go
//
// Room endpoints:
//   - POST   /rooms                → create a room; the caller becomes host
//   - POST   /rooms/{code}/join    → join a waiting room
//   - GET    /rooms/{code}         → current snapshot
//   - POST   /rooms/{code}/start   → host starts the round (token)
//   - POST   /rooms/{code}/guess   → submit a guess (token)
//   - DELETE /rooms/{code}         → host closes the room (token)
//   - GET    /rooms/{code}/ws      → websocket event stream (token)
//
// Create and join answer with a session token scoped to the room; the
// other player endpoints require it.

package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/session"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
)

type createRoomReq struct {
	Username string `json:"username"`
	Mode     string `json:"mode"`
}

type joinRoomReq struct {
	Username string `json:"username"`
}

type sessionRes struct {
	Code      string        `json:"code"`
	PlayerID  string        `json:"playerId"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Room      game.RoomView `json:"room"`
}

type startReq struct {
	Word string `json:"word"`
}

type guessReq struct {
	Word         string `json:"word"`
	AttemptIndex *int   `json:"attemptIndex"`
}

type guessRes struct {
	Row    []game.Tile      `json:"row"`
	Result game.GuessResult `json:"result"`
	Room   game.RoomView    `json:"room"`
}

func (s *Server) mountRooms() {
	s.r.Route("/rooms", func(r chi.Router) {
		r.Post("/", s.handleCreateRoom)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", s.handleGetRoom)
			r.Post("/join", s.handleJoinRoom)
			r.Get("/ws", s.handleRoomSocket)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePlayer())
				r.Post("/start", s.handleStart)
				r.Post("/guess", s.handleGuess)
				r.Delete("/", s.handleCloseRoom)
			})
		})
	})
}

// handleCreateRoom registers a room hosted by the caller and issues the
// host's token.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "body must be JSON")
		return
	}
	mode := game.ModeDuel
	if req.Mode != "" {
		m, ok := game.ParseMode(req.Mode)
		if !ok {
			writeError(w, r, fmt.Errorf("%w: unknown mode %q", game.ErrInvalidState, req.Mode))
			return
		}
		mode = m
	}
	view, err := s.deps.Engine.CreateRoom(r.Context(), strings.TrimSpace(req.Username), mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusCreated, view, view.HostID)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "body must be JSON")
		return
	}
	username := strings.TrimSpace(req.Username)
	view, err := s.deps.Engine.JoinRoom(r.Context(), chi.URLParam(r, "code"), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, view, username)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, view game.RoomView, playerID string) {
	token, exp, err := s.deps.Tokens.Issue(view.Code, playerID)
	if err != nil {
		writeError(w, r, fmt.Errorf("issue token: %w", err))
		return
	}
	writeJSON(w, status, sessionRes{Code: view.Code, PlayerID: playerID, Token: token, ExpiresAt: exp, Room: view})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Engine.GetRoom(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "body must be JSON")
			return
		}
	}
	me := playerFrom(r.Context())
	view, err := s.deps.Engine.StartGame(r.Context(), me.Room, me.PlayerID(), req.Word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": view})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "body must be JSON")
		return
	}
	if req.AttemptIndex == nil {
		writeError(w, r, fmt.Errorf("%w: attemptIndex is required", game.ErrInvalidAttempt))
		return
	}
	me := playerFrom(r.Context())
	res, view, err := s.deps.Engine.SubmitGuess(r.Context(), me.Room, me.PlayerID(), req.Word, *req.AttemptIndex)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Row: res.Guess.Tiles, Result: res, Room: view})
}

func (s *Server) handleCloseRoom(w http.ResponseWriter, r *http.Request) {
	me := playerFrom(r.Context())
	if err := s.deps.Engine.CloseRoom(r.Context(), me.Room, me.PlayerID()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleRoomSocket authenticates before upgrading so failures are plain
// HTTP errors; the hub owns the connection afterwards.
func (s *Server) handleRoomSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := s.authenticate(r)
	if err != nil {
		unauthorized(w, err.Error())
		return
	}
	if _, err := s.deps.Engine.GetRoom(r.Context(), claims.Room); err != nil {
		writeError(w, r, err)
		return
	}
	s.deps.Hub.ServeWS(w, r, s.deps.Engine, claims.Room, claims.PlayerID())
}

// ---------------------------- auth middleware ------------------------------

// ctxPlayerKey is the context key type for the session claims.
type ctxPlayerKey struct{}

// requirePlayer enforces a valid session token for the room in the path
// and injects its claims into the request context.
func (s *Server) requirePlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.authenticate(r)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxPlayerKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) authenticate(r *http.Request) (*session.Claims, error) {
	tok := bearer(r)
	if tok == "" {
		return nil, errNoToken
	}
	claims, err := s.deps.Tokens.Parse(tok)
	if err != nil {
		return nil, err
	}
	if claims.Room != store.NormalizeCode(chi.URLParam(r, "code")) {
		return nil, fmt.Errorf("%w: token is for another room", session.ErrInvalidToken)
	}
	return claims, nil
}

func playerFrom(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(ctxPlayerKey{}).(*session.Claims)
	return c
}
