package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currencysync "go-currency-sync"
	"go-currency-sync/board"
	"go-currency-sync/engine"
)

// maxEditBytes caps the body of an edit request
const maxEditBytes = 1 << 10

// Board what the HTTP layer needs from the dispatcher
type Board interface {
	Edit(ctx context.Context, code currencysync.Currency, text string) (map[currencysync.Currency]engine.Display, error)
	View(ctx context.Context) (board.View, error)
}

// Server dependencies for HTTP Server functions
type Server struct {
	Board  Board
	Logger log.Logger
	router chi.Router
}

func NewServer(b Board, logger log.Logger) *Server {
	server := &Server{
		Board:  b,
		Logger: logger,
		router: chi.NewRouter(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get("/health", s.health())
	s.router.Route("/api/fields", func(r chi.Router) {
		r.Get("/", s.fields())
		r.Post("/{code}", s.edit())
	})
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// display for marshalling one field to clients
type display struct {
	Amount    string `json:"amount"`
	Available bool   `json:"available"`
}

func toDisplay(d engine.Display) display {
	return display{Amount: d.String(), Available: d.Available}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.respond(rw, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// fields produces HTTP handler rendering every tracked field in display order
func (s *Server) fields() http.HandlerFunc {
	type field struct {
		Currency currencysync.Currency `json:"currency"`
		display
	}

	type response struct {
		State  string  `json:"state"`
		Fields []field `json:"fields"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		view, err := s.Board.View(r.Context())
		if err != nil {
			s.fail(rw, err)
			return
		}

		resp := response{State: view.State.String(), Fields: make([]field, 0, len(view.Fields))}
		for _, f := range view.Fields {
			resp.Fields = append(resp.Fields, field{Currency: f.Code, display: toDisplay(f.Display)})
		}
		s.respond(rw, http.StatusOK, resp)
	}
}

// edit produces HTTP handler applying text typed into one field
func (s *Server) edit() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		Text string `json:"text"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Source  currencysync.Currency             `json:"source"`
		Applied bool                              `json:"applied"`
		Updated map[currencysync.Currency]display `json:"updated"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		code := currencysync.Currency(chi.URLParam(r, "code")).Normalize()

		var req request
		if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxEditBytes)).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.respond(rw, http.StatusRequestEntityTooLarge, errorResponse{Error: "request too large"})
				return
			}
			s.respond(rw, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		updated, err := s.Board.Edit(r.Context(), code, req.Text)
		if err != nil {
			s.fail(rw, err)
			return
		}

		resp := response{Source: code, Applied: updated != nil, Updated: map[currencysync.Currency]display{}}
		for c, d := range updated {
			resp.Updated[c] = toDisplay(d)
		}
		s.respond(rw, http.StatusOK, resp)
	}
}

func (s *Server) fail(rw http.ResponseWriter, err error) {
	if errors.Is(err, board.ErrStopped) {
		s.respond(rw, http.StatusServiceUnavailable, errorResponse{Error: "board stopped"})
		return
	}
	level.Error(s.Logger).Log("msg", "request failed", "err", err)
	s.respond(rw, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (s *Server) respond(rw http.ResponseWriter, status int, body interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		level.Error(s.Logger).Log("msg", "failed json encoding", "err", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
		defer func(begin time.Time) {
			level.Debug(s.Logger).Log(
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"took", time.Since(begin),
			)
		}(time.Now())
		next.ServeHTTP(ww, r)
	})
}
