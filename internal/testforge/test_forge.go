// Package testforge provides an in-process fake of the GitHub REST endpoints
// pullfrom uses, for tests.
package testforge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Endpoint labels accepted by Fail.
const (
	EndpointRepository = "repository"
	EndpointBranches   = "branches"
	EndpointCommits    = "commits"
	EndpointCommit     = "commit"
)

// Commit is a fake commit. Broken commits are listed but their detail
// request answers 500.
type Commit struct {
	SHA    string
	Date   time.Time
	Broken bool
}

// Repository holds the branches of one fake repository.
type Repository struct {
	branches []string
	commits  map[string][]Commit // branch -> listing order
	bySHA    map[string]Commit
}

// AddBranch registers a branch and the commits reachable from it, in the
// order the listing endpoint returns them.
func (r *Repository) AddBranch(name string, commits ...Commit) *Repository {
	r.branches = append(r.branches, name)
	r.commits[name] = commits
	for _, c := range commits {
		r.bySHA[c.SHA] = c
	}
	return r
}

type failure struct {
	status int
	body   string
}

// Server is a fake GitHub API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	token    string
	repos    map[string]*Repository
	failures map[string]failure
	requests []string
}

// NewServer starts a fake API server. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		repos:    make(map[string]*Repository),
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{name}", s.guard(EndpointRepository, s.handleRepository))
	mux.HandleFunc("GET /repos/{owner}/{name}/branches", s.guard(EndpointBranches, s.handleBranches))
	mux.HandleFunc("GET /repos/{owner}/{name}/commits", s.guard(EndpointCommits, s.handleCommits))
	mux.HandleFunc("GET /repos/{owner}/{name}/commits/{sha}", s.guard(EndpointCommit, s.handleCommit))
	s.Server = httptest.NewServer(mux)
	return s
}

// RequireToken makes every request without "Authorization: token <tok>" fail with 401.
func (s *Server) RequireToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
}

// AddRepository registers owner/name and returns it for branch setup.
func (s *Server) AddRepository(fullName string) *Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Repository{commits: make(map[string][]Commit), bySHA: make(map[string]Commit)}
	s.repos[fullName] = r
	return r
}

// Fail makes every request to endpoint answer status with body.
func (s *Server) Fail(endpoint string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = failure{status: status, body: body}
}

// Requests returns the request URIs received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) guard(endpoint string, next func(http.ResponseWriter, *http.Request, *Repository)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		token := s.token
		fail, failing := s.failures[endpoint]
		repo := s.repos[r.PathValue("owner")+"/"+r.PathValue("name")]
		s.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "token "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		if failing {
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}
		if repo == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		next(w, r, repo)
	}
}

func (s *Server) handleRepository(w http.ResponseWriter, r *http.Request, _ *Repository) {
	writeJSON(w, http.StatusOK, map[string]any{
		"full_name":      r.PathValue("owner") + "/" + r.PathValue("name"),
		"default_branch": "master",
		"private":        true,
	})
}

func (s *Server) handleBranches(w http.ResponseWriter, _ *http.Request, repo *Repository) {
	out := make([]map[string]string, 0, len(repo.branches))
	for _, b := range repo.branches {
		out = append(out, map[string]string{"name": b})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request, repo *Repository) {
	branch := r.URL.Query().Get("sha")
	commits, ok := repo.commits[branch]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No commit found for SHA: " + branch})
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid since"})
			return
		}
		since = parsed
	}

	base := s.URL + "/repos/" + r.PathValue("owner") + "/" + r.PathValue("name") + "/commits/"
	out := make([]map[string]string, 0, len(commits))
	for _, c := range commits {
		if !since.IsZero() && c.Date.Before(since) {
			continue
		}
		out = append(out, map[string]string{"sha": c.SHA, "url": base + c.SHA})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request, repo *Repository) {
	c, ok := repo.bySHA[r.PathValue("sha")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	if c.Broken {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sha": c.SHA,
		"url": s.URL + r.URL.Path,
		"commit": map[string]any{
			"committer": map[string]string{
				"name":  "Deploy Bot",
				"email": "deploy@example.com",
				"date":  c.Date.UTC().Format(time.RFC3339),
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
