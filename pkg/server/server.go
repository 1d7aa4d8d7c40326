// Package server provides a local HTTP preview server for a skill
// repository: a JSON API over the discovered skills and server-rendered
// HTML pages for browsing them.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/skill"
)

// Config holds the configuration for the preview server
type Config struct {
	Host string
	Port int
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Server serves the skill repository over HTTP
type Server struct {
	router    *mux.Router
	discovery *skill.Discovery
	config    *Config
	markdown  goldmark.Markdown
	server    *http.Server
}

// skillSummary is the JSON representation of a skill in list responses
type skillSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DependsOn   []string `json:"dependsOn,omitempty"`
	Directory   string   `json:"directory"`
}

// skillDetail adds the document body to the summary
type skillDetail struct {
	skillSummary
	Content string `json:"content"`
}

// NewServer creates a preview server over the given discovery
func NewServer(discovery *skill.Discovery, config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router:    mux.NewRouter(),
		discovery: discovery,
		config:    config,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET")
	api.HandleFunc("/skills/{name}", s.handleGetSkill).Methods("GET")

	s.router.HandleFunc("/skills/{name}", s.handleSkillPage).Methods("GET")
	s.router.HandleFunc("/", s.handleIndexPage).Methods("GET")

	s.router.Use(s.loggingMiddleware)
}

// Handler returns the root HTTP handler, used directly by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is cancelled, then shuts it
// down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Wrap(s.server.Shutdown(shutdownCtx), "failed to shut down server")
	}
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.discovery.Discover()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	summaries := make([]skillSummary, 0, len(skills))
	for _, sk := range skills {
		summaries = append(summaries, summarize(sk))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	s.writeJSON(w, r, summaries)
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sk, err := s.discovery.GetSkill(name)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	s.writeJSON(w, r, skillDetail{skillSummary: summarize(sk), Content: sk.Content})
}

func summarize(sk *skill.Skill) skillSummary {
	return skillSummary{
		Name:        sk.Name,
		Description: sk.Description,
		DependsOn:   sk.DependsOn,
		Directory:   sk.Directory,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger.G(r.Context()).WithError(err).WithField("path", r.URL.Path).Warn("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.statusCode,
			"duration": time.Since(start),
		}).Info("HTTP request")
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Skills</title></head>
<body>
<h1>Skills</h1>
<ul>
{{- range . }}
<li><a href="/skills/{{ .Name }}">{{ .Name }}</a>: {{ .Description }}</li>
{{- end }}
</ul>
</body>
</html>
`))

var skillTemplate = template.Must(template.New("skill").Parse(`<!DOCTYPE html>
<html>
<head><title>{{ .Name }}</title></head>
<body>
<p><a href="/">← all skills</a></p>
{{ .Body }}
</body>
</html>
`))

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	skills, err := s.discovery.Discover()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]skillSummary, 0, len(skills))
	for _, sk := range skills {
		summaries = append(summaries, summarize(sk))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, summaries); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to render index page")
	}
}

func (s *Server) handleSkillPage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sk, err := s.discovery.GetSkill(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var rendered bytes.Buffer
	if err := s.markdown.Convert([]byte(sk.Content), &rendered); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Name string
		Body template.HTML
	}{Name: sk.Name, Body: template.HTML(rendered.String())}
	if err := skillTemplate.Execute(w, data); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to render skill page")
	}
}
