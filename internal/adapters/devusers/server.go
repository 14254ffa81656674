// Package devusers serves an in-memory /users REST resource for local
// development and tests. It is not a persistence layer.
package devusers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/target/userdesk/internal/domain/model"
	httpx "github.com/target/userdesk/internal/http"
)

// Options configures the stub.
type Options struct {
	// Path is the collection path; defaults to /users.
	Path string
	// Seed preloads SeedUsers.
	Seed   bool
	Logger *slog.Logger
}

// Server is an http.Handler implementing list/create/update/delete.
type Server struct {
	path   string
	logger *slog.Logger
	mux    *http.ServeMux

	mu     sync.Mutex
	users  []model.User
	nextID int64
	// failWith, when non-zero, is returned for every request.
	failWith int
}

// SeedUsers is the data loaded when Options.Seed is set.
func SeedUsers() []model.User {
	return []model.User{
		{ID: 1, Username: "ada", Email: "ada@example.com"},
		{ID: 2, Username: "grace", Email: "grace@example.com"},
		{ID: 3, Username: "linus", Email: "linus@example.com"},
	}
}

// New builds a stub server.
func New(opts Options) *Server {
	path := "/" + strings.Trim(strings.TrimSpace(opts.Path), "/")
	if path == "/" {
		path = "/users"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{path: path, logger: logger.With("component", "devusers"), nextID: 1}
	if opts.Seed {
		s.users = SeedUsers()
		s.nextID = int64(len(s.users)) + 1
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path, s.list)
	mux.HandleFunc("POST "+path, s.create)
	mux.HandleFunc("GET "+path+"/{id}", s.get)
	mux.HandleFunc("PUT "+path+"/{id}", s.update)
	mux.HandleFunc("DELETE "+path+"/{id}", s.remove)
	s.mux = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.failWith
	s.mu.Unlock()
	if status != 0 {
		httpx.WriteError(w, httpx.ErrorParams{Code: status, ErrCode: "injected_failure", Err: errors.New(http.StatusText(status))})
		return
	}
	s.mux.ServeHTTP(w, r)
}

// FailWith makes every request answer status until called again with 0.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

// Users returns a copy of the stored users.
func (s *Server) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, s.Users())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	i := s.indexLocked(id)
	var u model.User
	if i >= 0 {
		u = s.users[i]
	}
	s.mu.Unlock()

	if i < 0 {
		writeNotFound(w, id)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in model.UserInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}
	in = model.NewUserInput(in.Username, in.Email)

	s.mu.Lock()
	u := model.User{ID: s.nextID, Username: in.Username, Email: in.Email}
	s.nextID++
	s.users = append(s.users, u)
	s.mu.Unlock()

	s.logger.Debug("user created", "id", u.ID)
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.UserInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}
	in = model.NewUserInput(in.Username, in.Email)

	s.mu.Lock()
	i := s.indexLocked(id)
	var u model.User
	if i >= 0 {
		u = model.User{ID: id, Username: in.Username, Email: in.Email}
		s.users[i] = u
	}
	s.mu.Unlock()

	if i < 0 {
		writeNotFound(w, id)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	before := len(s.users)
	s.users = slices.DeleteFunc(s.users, func(u model.User) bool { return u.ID == id })
	removed := before - len(s.users)
	s.mu.Unlock()

	if removed == 0 {
		writeNotFound(w, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) indexLocked(id int64) int {
	return slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == id })
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, httpx.ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("user id must be a positive integer"),
		})
		return 0, false
	}
	return id, true
}

func writeNotFound(w http.ResponseWriter, id int64) {
	httpx.WriteError(w, httpx.ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "user_not_found",
		Err:     errors.New("user " + strconv.FormatInt(id, 10) + " not found"),
	})
}
