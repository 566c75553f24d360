// Package fakeapi hosts an in-memory imitation of the console REST API.
// Tests run the client against it, and `consolectl fake-server` serves it
// locally so frontend work does not need the real backend.
package fakeapi

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
)

type seededUser struct {
	email        string
	passwordHash []byte
}

// Server is the fake console API.
type Server struct {
	store     *Store
	auth      *jwtauth.JWTAuth
	logger    *slog.Logger
	accessTTL time.Duration
	users     map[string]seededUser
	refreshMu sync.Mutex
	refresh   map[string]string // refresh token -> email
	router    *chi.Mux
}

type Option func(*Server)

// WithStore replaces the backing store, usually to pre-seed data.
func WithStore(store *Store) Option {
	return func(s *Server) { s.store = store }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithUser seeds a login. The password is bcrypt-hashed at setup.
func WithUser(email, password string) Option {
	return func(s *Server) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic("fakeapi: hash seeded password: " + err.Error())
		}
		s.users[email] = seededUser{email: email, passwordHash: hash}
	}
}

// WithAccessTTL shortens token life, letting tests exercise the client's
// refresh-and-retry path.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) { s.accessTTL = ttl }
}

func New(opts ...Option) *Server {
	s := &Server{
		store:     NewStore(),
		auth:      jwtauth.New("HS256", []byte("fakeapi-secret"), nil, jwt.WithAcceptableSkew(time.Second)),
		logger:    slog.Default(),
		accessTTL: time.Hour,
		users:     make(map[string]seededUser),
		refresh:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Store exposes the backing store for seeding and assertions.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		MaxAge:           300,
	}))
	r.Use(httplog.RequestLogger(s.logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.login)
	r.Post("/auth/refresh", s.refreshToken)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.auth))
		r.Use(s.authenticated)

		r.Route("/{entity}", func(r chi.Router) {
			r.Get("/", s.list)
			r.Post("/", s.create)
			r.Get("/{id}", s.get)
			r.Put("/{id}", s.update)
			r.Delete("/{id}", s.remove)
		})
	})

	return r
}

// authenticated rejects requests without a valid bearer token using the
// same envelope as every other error.
func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			unauthorized(w, "Missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body", nil)
		return
	}

	user, ok := s.users[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.Password)) != nil {
		unauthorized(w, "Invalid credentials")
		return
	}
	s.issueTokens(w, user.email)
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body", nil)
		return
	}

	s.refreshMu.Lock()
	email, ok := s.refresh[req.RefreshToken]
	if ok {
		delete(s.refresh, req.RefreshToken)
	}
	s.refreshMu.Unlock()
	if !ok {
		unauthorized(w, "Refresh token revoked")
		return
	}
	s.issueTokens(w, email)
}

func (s *Server) issueTokens(w http.ResponseWriter, email string) {
	expiresAt := time.Now().Add(s.accessTTL)
	_, accessToken, err := s.auth.Encode(map[string]interface{}{
		"sub":   email,
		"email": email,
		"exp":   expiresAt.Unix(),
	})
	if err != nil {
		internalServerError(w, "Failed to sign token")
		return
	}

	refreshToken := uuid.NewString()
	s.refreshMu.Lock()
	s.refresh[refreshToken] = email
	s.refreshMu.Unlock()

	success(w, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_at":    expiresAt.Unix(),
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	page := 1
	limit := 10
	all := false
	filters := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch key {
		case "page":
			if n, err := strconv.Atoi(value); err == nil && n >= 1 {
				page = n
			}
		case "limit":
			if value == "all" {
				all = true
			} else if n, err := strconv.Atoi(value); err == nil && n >= 1 {
				limit = n
			}
		default:
			filters[key] = value
		}
	}

	// Holidays are filtered by month against their date fields rather than
	// a stored column.
	monthPrefix := ""
	if entity == "holiday" {
		monthPrefix = filters["month"]
		delete(filters, "month")
	}

	records := s.store.List(entity, filters)
	if monthPrefix != "" {
		var kept []Record
		for _, rec := range records {
			if holidayInMonth(rec, monthPrefix) {
				kept = append(kept, rec)
			}
		}
		records = kept
	}

	total := len(records)
	totalPages := 1
	if !all {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		records = records[start:end]
	}
	if records == nil {
		records = []Record{}
	}

	success(w, map[string]any{
		"items":       records,
		"total":       total,
		"currentPage": page,
		"totalPages":  totalPages,
	})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	rec, ok := s.store.Get(entity, chi.URLParam(r, "id"))
	if !ok {
		notFound(w, entity+" not found")
		return
	}
	success(w, rec)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(r)
	if err != nil {
		badRequest(w, err.Error(), nil)
		return
	}
	created(w, s.store.Create(chi.URLParam(r, "entity"), rec))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(r)
	if err != nil {
		badRequest(w, err.Error(), nil)
		return
	}
	entity := chi.URLParam(r, "entity")
	updated, ok := s.store.Update(entity, chi.URLParam(r, "id"), rec)
	if !ok {
		notFound(w, entity+" not found")
		return
	}
	success(w, updated)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	if !s.store.Delete(entity, chi.URLParam(r, "id")) {
		notFound(w, entity+" not found")
		return
	}
	deleted(w)
}

// decodeRecord reads a JSON body or a multipart form. Multipart fields map
// to string values; uploaded files are stored by filename.
func decodeRecord(r *http.Request) (Record, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			return nil, err
		}
		rec := make(Record)
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				rec[key] = values[0]
			}
		}
		for key, files := range r.MultipartForm.File {
			if len(files) > 0 {
				rec[key] = files[0].Filename
			}
		}
		return rec, nil
	}

	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		return nil, err
	}
	delete(rec, "id")
	return rec, nil
}

func holidayInMonth(rec Record, monthKey string) bool {
	for _, field := range []string{"date", "start_date", "end_date"} {
		if value, ok := rec[field].(string); ok && strings.HasPrefix(value, monthKey) {
			return true
		}
	}
	return false
}
