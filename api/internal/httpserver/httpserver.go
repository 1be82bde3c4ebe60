package httpserver

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"persona-selfie/api/internal/handle"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Options struct {
	Addr           string
	StaticDir      string
	AllowedOrigins []string
	Log            *zap.Logger
}

type Server struct {
	srv *http.Server
	log *zap.Logger
}

// Routes собирает mux со всеми ручками API.
func Routes(h *handle.Handle, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/v1/generate_image", h.GenerateImage)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(filesOnly{http.Dir(staticDir)})))
	mux.HandleFunc("/", h.Root)
	return mux
}

// filesOnly отдаёт только файлы: каталоги не листаются (404).
type filesOnly struct{ root http.FileSystem }

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// CORS: "*" в списке разрешает любой origin, но с credentials отвечаем конкретным origin.
func CORS(origins []string) *cors.Cors {
	opts := cors.Options{
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	}
	wildcard := false
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			wildcard = true
		}
	}
	if wildcard || len(origins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return cors.New(opts)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// LogRequests пишет одну строку на запрос.
func LogRequests(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("took", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

func New(h *handle.Handle, opt Options) *Server {
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	var handler http.Handler = Routes(h, opt.StaticDir)
	handler = CORS(opt.AllowedOrigins).Handler(handler)
	handler = LogRequests(log, handler)

	return &Server{
		srv: &http.Server{
			Addr:              opt.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// WriteTimeout не ставим: генерация может идти минутами
			IdleTimeout: 120 * time.Second,
		},
		log: log,
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		errc <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	<-errc
	return nil
}
