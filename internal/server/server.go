package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/nashra-news/nashra/internal/database"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for reading doses and recording feedback.
type Server struct {
	db    *database.DB
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown":   renderMarkdown,
		"formatDate": database.FormatDateDisplay,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "dose.html", "prefs.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/dose/", s.handleDose)
	s.mux.HandleFunc("/feedback/", s.handleFeedback)
	s.mux.HandleFunc("/dwell", s.handleDwell)
	s.mux.HandleFunc("/r/", s.handleRead)
	s.mux.HandleFunc("/prefs", s.handlePrefs)
	s.mux.HandleFunc("/prefs/add", s.handleAddPref)
	s.mux.HandleFunc("/prefs/", s.handlePrefAction)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	doses, err := s.db.GetAllDoses()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Doses": doses,
	})
}

func (s *Server) handleDose(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/dose/"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	dose, _ := s.db.GetDoseByID(id)
	if dose == nil {
		http.NotFound(w, r)
		return
	}
	articles, _ := s.db.GetDoseArticles(id)

	s.render(w, "dose.html", map[string]any{
		"Dose":     dose,
		"Articles": articles,
	})
}

// handleFeedback records a reaction/share/save against a dose, optionally
// pinned to one of its articles. POST /feedback/{doseID}/{kind}
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/feedback/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	doseID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	kind := parts[1]

	var articleID *int64
	if raw := strings.TrimSpace(r.FormValue("article_id")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			articleID = &id
		}
	}
	var value *string
	if raw := strings.TrimSpace(r.FormValue("value")); raw != "" {
		value = &raw
	}

	if _, err := s.db.InsertDoseFeedback(doseID, articleID, kind, value); err != nil {
		log.Printf("Failed to store %s feedback for dose %d: %v", kind, doseID, err)
	}
	if kind == "reaction" && articleID != nil {
		s.db.IncrementArticleLikes(*articleID)
	}

	http.Redirect(w, r, fmt.Sprintf("/dose/%d", doseID), http.StatusFound)
}

// handleDwell is the dwell-time beacon: fire-and-forget POSTs from the dose
// page when the reader leaves. Responds 204 so the client ignores it.
func (s *Server) handleDwell(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	doseID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("dose_id")), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	seconds := strings.TrimSpace(r.FormValue("seconds"))
	var value *string
	if seconds != "" {
		value = &seconds
	}
	s.db.InsertDoseFeedback(doseID, nil, "dwell", value)
	w.WriteHeader(http.StatusNoContent)
}

// handleRead is the read-through redirect: bumps the article's view counter
// and sends the reader to the source. GET /r/{articleID}
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/r/"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	article, _ := s.db.GetArticleByID(id)
	if article == nil {
		http.NotFound(w, r)
		return
	}

	s.db.IncrementArticleViews(id)
	http.Redirect(w, r, article.URL, http.StatusFound)
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	prefs, _ := s.db.GetAllPreferences()
	s.render(w, "prefs.html", map[string]any{
		"Preferences": prefs,
	})
}

func (s *Server) handleAddPref(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/prefs", http.StatusFound)
		return
	}

	token := strings.TrimSpace(r.FormValue("token"))
	if token != "" {
		s.db.InsertPreference(token)
	}

	http.Redirect(w, r, "/prefs", http.StatusFound)
}

func (s *Server) handlePrefAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/prefs", http.StatusFound)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/prefs/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		http.Redirect(w, r, "/prefs", http.StatusFound)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Redirect(w, r, "/prefs", http.StatusFound)
		return
	}

	switch parts[1] {
	case "toggle":
		s.db.TogglePreference(id)
	case "delete":
		s.db.DeletePreference(id)
	}

	http.Redirect(w, r, "/prefs", http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
