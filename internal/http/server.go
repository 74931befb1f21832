package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/log"
	"fintrack/internal/store"
)

// Pinger reports whether the backing store is reachable. The readiness
// endpoint uses it so load balancers stop routing before the database is up.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	logger       *log.Logger
	transactions store.TransactionStore
	categories   store.CategoryStore
	reports      store.ReportStore
	pinger       Pinger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Timeouts are left for the caller to set on the embedded server.
func NewServer(addr string, logger *log.Logger, ts store.TransactionStore, cs store.CategoryStore, rs store.ReportStore, pinger Pinger) *Server {
	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		logger:       logger.WithComponent(log.ComponentHTTP),
		transactions: ts,
		categories:   cs,
		reports:      rs,
		pinger:       pinger,
	}

	r := mux.NewRouter()
	r.Use(s.withRequestLog)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	r.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{transaction_id}", s.handleUpdateTransaction).Methods(http.MethodPut)
	r.HandleFunc("/transactions/{transaction_id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	r.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	r.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	r.HandleFunc("/categories/{category_id}", s.handleRenameCategory).Methods(http.MethodPut)

	r.HandleFunc("/summary/monthly", s.handleMonthlySummary).Methods(http.MethodGet)
	r.HandleFunc("/summary/spending-by-category", s.handleSpendingByCategory).Methods(http.MethodGet)

	s.Handler = r
	return s
}

// withRequestLog tags every request with an ID, logs start and completion,
// and stores a request-scoped logger in the context for the handlers.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := log.WithLogger(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP(r))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		reqLogger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Finance Tracker API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unreachable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
