package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/alberto-moreno-sa/notion-blog/internal/blog"
	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/render"
)

// Source provides hydrated posts for the two page kinds.
type Source interface {
	Listing(ctx context.Context) ([]model.Post, error)
	Single(ctx context.Context, slug string) (*model.Post, error)
}

type cachedPage struct {
	status  int
	body    []byte
	expires time.Time
}

// Server serves the blog, regenerating each page at most once per
// revalidate interval. Pages for unknown slugs are looked up on every request
// and are not kept.
type Server struct {
	infoLog  *log.Logger
	errorLog *log.Logger

	source       Source
	revalidate   time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu       sync.Mutex
	renderer *render.Renderer
	cache    map[string]cachedPage
	pending  map[string]*regeneration
}

// New creates a Server.
func New(source Source, renderer *render.Renderer, revalidate time.Duration) *Server {
	return &Server{
		infoLog:      log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime),
		errorLog:     log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile),
		source:       source,
		revalidate:   revalidate,
		fetchTimeout: 30 * time.Second,
		now:          time.Now,
		renderer:     renderer,
		cache:        make(map[string]cachedPage),
		pending:      make(map[string]*regeneration),
	}
}

// Routes returns the handler for the blog routes.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("GET /post/{slug}", s.post)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w)
	})
	return s.logRequest(mux)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:     addr,
		ErrorLog: s.errorLog,
		Handler:  s.Routes(),

		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: s.fetchTimeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.infoLog.Printf("Starting server on http://localhost%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.infoLog.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// SetRenderer swaps the renderer and drops every cached page.
func (s *Server) SetRenderer(r *render.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer = r
	s.cache = make(map[string]cachedPage)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "/", func(ctx context.Context, rd *render.Renderer, buf *bytes.Buffer) (int, error) {
		posts, err := s.source.Listing(ctx)
		if err != nil {
			return 0, err
		}
		return http.StatusOK, rd.RenderListing(buf, posts)
	})
}

func (s *Server) post(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	s.serveCached(w, r, "/post/"+slug, func(ctx context.Context, rd *render.Renderer, buf *bytes.Buffer) (int, error) {
		post, err := s.source.Single(ctx, slug)
		if errors.Is(err, blog.ErrNotFound) {
			return http.StatusNotFound, rd.RenderNotFound(buf)
		}
		if err != nil {
			return 0, err
		}
		return http.StatusOK, rd.RenderPost(buf, *post)
	})
}

type generateFunc func(ctx context.Context, rd *render.Renderer, buf *bytes.Buffer) (int, error)

// regeneration is one in-flight generation of a page. Requests arriving while
// it runs wait for its result instead of generating the page again.
type regeneration struct {
	done chan struct{}
	page cachedPage
	err  error
}

// serveCached serves the cached page for key while it is fresh, otherwise
// regenerates it. Concurrent requests for the same key share one
// regeneration. A failed regeneration evicts the page and reports a server
// error; stale content is not served. Not-found pages are never cached.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key string, generate generateFunc) {
	s.mu.Lock()
	if page, ok := s.cache[key]; ok && s.now().Before(page.expires) {
		s.mu.Unlock()
		writePage(w, page)
		return
	}
	if call, ok := s.pending[key]; ok {
		s.mu.Unlock()
		select {
		case <-call.done:
			s.writeResult(w, key, call)
		case <-r.Context().Done():
		}
		return
	}
	call := &regeneration{done: make(chan struct{})}
	s.pending[key] = call
	rd := s.renderer
	s.mu.Unlock()

	// Waiting requests depend on this generation, so it outlives the
	// request that started it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.fetchTimeout)
	defer cancel()

	var buf bytes.Buffer
	status, err := generate(ctx, rd, &buf)
	call.page = cachedPage{status: status, body: buf.Bytes(), expires: s.now().Add(s.revalidate)}
	call.err = err

	s.mu.Lock()
	delete(s.pending, key)
	switch {
	case err != nil:
		delete(s.cache, key)
	case status == http.StatusOK && s.renderer == rd:
		s.cache[key] = call.page
	}
	s.mu.Unlock()
	close(call.done)

	s.writeResult(w, key, call)
}

func (s *Server) writeResult(w http.ResponseWriter, key string, call *regeneration) {
	if call.err != nil {
		s.serverError(w, fmt.Errorf("generate %s: %w", key, call.err))
		return
	}
	writePage(w, call.page)
}

func writePage(w http.ResponseWriter, page cachedPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(page.status)
	w.Write(page.body)
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.infoLog.Printf("%s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}
