package twin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server serves both the auth and the studio API from one router.
type Server struct {
	Store  *MemoryStore
	Tokens *TokenIssuer
	Router *chi.Mux

	logger    *slog.Logger
	refreshes atomic.Int64
	requests  atomic.Int64
}

// Options configures a Server.
type Options struct {
	TokenTTL time.Duration
	Latency  time.Duration
	Logger   *slog.Logger
}

// New creates a Server with an empty store.
func New(opts Options) (*Server, error) {
	tokens, err := NewTokenIssuer(opts.TokenTTL)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{Store: NewMemoryStore(), Tokens: tokens, Router: chi.NewRouter(), logger: logger}

	s.Router.Use(chimw.RequestID)
	s.Router.Use(chimw.Recoverer)
	s.Router.Use(s.requestLog)
	if opts.Latency > 0 {
		s.Router.Use(latency(opts.Latency))
	}
	s.routes(s.Router)
	return s, nil
}

// ServeHTTP implements http.Handler so Server can be used directly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// RefreshCount reports how many refresh-token calls were received.
func (s *Server) RefreshCount() int64 {
	return s.refreshes.Load()
}

// RequestCount reports how many requests were received.
func (s *Server) RequestCount() int64 {
	return s.requests.Load()
}

// ExpireAccessTokens makes every issued access token answer 401.
func (s *Server) ExpireAccessTokens() {
	s.Tokens.ExpireAll()
}

func (s *Server) routes(r chi.Router) {
	r.Post("/api/users/login", s.login)
	r.Post("/api/users/signup", s.signup)
	r.Post("/auth/refresh-token", s.refreshToken)

	r.Route("/api/studios", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/getStudios", s.listStudios)
		r.Get("/getStudio/{id}", s.getStudio)
		r.Post("/createStudio", s.createStudio)
		r.Put("/updateStudio/{id}", s.updateStudio)
		r.Delete("/deleteStudio/{id}", s.deleteStudio)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decode(w, r, &body) {
		return
	}
	user, err := s.Store.Authenticate(body.Email, body.Password)
	if err != nil {
		Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.issue(w, http.StatusOK, user)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body signupBody
	if !decode(w, r, &body) {
		return
	}
	fields := map[string]string{}
	if strings.TrimSpace(body.Name) == "" {
		fields["name"] = "Name is required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(body.Email)); err != nil {
		fields["email"] = "A valid email is required"
	}
	if len(body.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}
	if len(fields) > 0 {
		ValidationError(w, fields)
		return
	}
	user, err := s.Store.AddUser(body.Name, body.Email, body.Password)
	if errors.Is(err, errEmailTaken) {
		Error(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		Error(w, http.StatusInternalServerError, "Could not create user")
		return
	}
	s.issue(w, http.StatusCreated, user)
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	s.refreshes.Add(1)
	var body refreshBody
	if !decode(w, r, &body) {
		return
	}
	userID, err := s.Store.LookupRefreshToken(body.RefreshToken)
	if err != nil {
		Error(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	user, ok := s.Store.userByID(userID)
	if !ok {
		Error(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	access, err := s.Tokens.Issue(user)
	if err != nil {
		Error(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (s *Server) issue(w http.ResponseWriter, status int, user User) {
	access, err := s.Tokens.Issue(user)
	if err != nil {
		Error(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	JSON(w, status, authPayload{
		User:         user,
		AccessToken:  access,
		RefreshToken: s.Store.IssueRefreshToken(user.ID),
	})
}

type ctxKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth || token == "" {
			Error(w, http.StatusUnauthorized, "No token provided")
			return
		}
		userID, err := s.Tokens.Verify(token)
		if err != nil {
			Error(w, http.StatusUnauthorized, "Token expired or invalid")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func (s *Server) listStudios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	studios := s.Store.ListStudios(StudioFilter{
		Location:   q.Get("location"),
		PriceRange: q.Get("priceRange"),
		Rating:     q.Get("rating"),
		SearchTerm: q.Get("searchTerm"),
	})
	JSON(w, http.StatusOK, map[string]any{"studios": studios})
}

func (s *Server) getStudio(w http.ResponseWriter, r *http.Request) {
	st, err := s.Store.GetStudio(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusNotFound, "Studio not found")
		return
	}
	JSON(w, http.StatusOK, st)
}

func (s *Server) createStudio(w http.ResponseWriter, r *http.Request) {
	var body studioBody
	if !decode(w, r, &body) {
		return
	}
	if fields := body.validate(true); len(fields) > 0 {
		ValidationError(w, fields)
		return
	}
	st := Studio{Owner: userFrom(r)}
	body.apply(&st)
	JSON(w, http.StatusCreated, s.Store.CreateStudio(st))
}

func (s *Server) updateStudio(w http.ResponseWriter, r *http.Request) {
	var body studioBody
	if !decode(w, r, &body) {
		return
	}
	if fields := body.validate(false); len(fields) > 0 {
		ValidationError(w, fields)
		return
	}
	st, err := s.Store.UpdateStudio(chi.URLParam(r, "id"), body.apply)
	if err != nil {
		Error(w, http.StatusNotFound, "Studio not found")
		return
	}
	JSON(w, http.StatusOK, st)
}

func (s *Server) deleteStudio(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteStudio(chi.URLParam(r, "id")); err != nil {
		Error(w, http.StatusNotFound, "Studio not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b studioBody) validate(create bool) map[string]string {
	fields := map[string]string{}
	if create && strings.TrimSpace(b.Name) == "" {
		fields["name"] = "Name is required"
	}
	if create && strings.TrimSpace(b.Location) == "" {
		fields["location"] = "Location is required"
	}
	if b.PricePerHour != nil && *b.PricePerHour < 0 {
		fields["pricePerHour"] = "Price must not be negative"
	}
	if e := strings.TrimSpace(b.ContactEmail); e != "" {
		if _, err := mail.ParseAddress(e); err != nil {
			fields["contactEmail"] = "Invalid email"
		}
	}
	return fields
}

func (b studioBody) apply(st *Studio) {
	if v := strings.TrimSpace(b.Name); v != "" {
		st.Name = v
	}
	if v := strings.TrimSpace(b.Location); v != "" {
		st.Location = v
	}
	st.Description = strings.TrimSpace(b.Description)
	if b.PricePerHour != nil {
		st.PricePerHour = *b.PricePerHour
	}
	if b.Amenities != nil {
		st.Amenities = b.Amenities
	}
	st.ContactEmail = strings.TrimSpace(b.ContactEmail)
	st.ContactPhone = strings.TrimSpace(b.ContactPhone)
	st.Image = strings.TrimSpace(b.Image)
}

func userFrom(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimw.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

func latency(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes a {"message": ...} error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"message": message})
}

// ValidationError writes a 400 response with field-keyed problems.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"message": "Validation failed",
		"errors":  fields,
	})
}
