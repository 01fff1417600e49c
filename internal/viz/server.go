package viz

import (
	"fmt"
	"html/template"
	"image"
	"image/png"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Feature visualization</title></head>
<body>
<h1>Feature visualization</h1>
{{range .}}
<h2>{{.}}</h2>
<img src="/grid/{{.}}.png" alt="{{.}}">
{{end}}
</body>
</html>
`))

// Server serves rendered grids over HTTP so they can be inspected in a
// browser instead of a native window.
type Server struct {
	mu     sync.RWMutex
	grids  map[string]image.Image
	order  []string
	router *mux.Router
}

// NewServer returns a server with no grids registered.
func NewServer() *Server {
	s := &Server{grids: map[string]image.Image{}, router: mux.NewRouter()}
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/grid/{name}.png", s.handleGrid).Methods(http.MethodGet)
	return s
}

// Add registers a grid under name, replacing any previous image. Names
// appear on the index page in registration order.
func (s *Server) Add(name string, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grids[name]; !ok {
		s.order = append(s.order, name)
	}
	s.grids[name] = img
}

// Handler returns the HTTP handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving the visualization on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	names := append([]string(nil), s.order...)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, names); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.mu.RLock()
	img, ok := s.grids[name]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, fmt.Sprintf("no grid %q", name), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
