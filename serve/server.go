// Package serve exposes the store over HTTP: table browsing and term-tree
// views.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ontodev/nanobot/config"
	"github.com/ontodev/nanobot/hiccup"
	"github.com/ontodev/nanobot/ldtab"
	"github.com/ontodev/nanobot/query"
	"github.com/ontodev/nanobot/tree"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// shutdown signal.
const shutdownTimeout = 15 * time.Second

// statementColumns is the projection used when browsing statement tables.
var statementColumns = []string{
	"subject", "predicate", "object", "datatype", "annotation",
}

// Server is the nanobot HTTP layer.
type Server struct {
	cfg  *config.Config
	db   *gorm.DB
	log  *slog.Logger
	http *http.Server
}

// New wires the routes and returns a server ready to Run.
func New(cfg *config.Config, db *gorm.DB, log *slog.Logger) *Server {
	s := &Server{cfg: cfg, db: db, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{table}", s.handleTable)
	mux.HandleFunc("GET /{table}/{subject}", s.handleTree)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: s.logRequests(mux),
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTable browses a statement table. The query string is parsed as
// PostgREST-style filters plus limit, offset and order parameters.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sel := &query.Select{
		Table:   r.PathValue("table"),
		Columns: statementColumns,
	}

	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		var err error
		switch key {
		case "limit":
			sel.Limit, err = strconv.Atoi(value)
		case "offset":
			sel.Offset, err = strconv.Atoi(value)
		case "order":
			sel.Order, err = parseOrder(value)
		default:
			var f query.Filter
			if f, err = query.ParseFilter(key, value); err == nil {
				sel.Filters = append(sel.Filters, f)
			}
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Surface table and column validation as a client error before the
	// store is touched.
	if _, _, err := sel.SQL(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := query.Rows(r.Context(), s.db, sel)
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"table": sel.Table,
		"rows":  rows,
	})
}

// handleTree returns the term tree of a subject: format=json (rich tree),
// format=text (indented markdown), or format=html (rendered markup
// fragment).
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	subject := r.PathValue("subject")

	store, err := ldtab.NewStore(s.db, table)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		forest, err := tree.Rich(r.Context(), store, subject)
		if err != nil {
			s.writeTreeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, forest)
	case "text":
		text, err := tree.Text(r.Context(), store, subject)
		if err != nil {
			s.writeTreeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, text)
	case "html":
		opts := tree.Options{PreferredRoots: s.preferredRoots(r)}
		markup, err := tree.Markup(r.Context(), store, subject, opts)
		if err != nil {
			s.writeTreeError(w, err)
			return
		}
		markup = hiccup.InsertHref(markup, fmt.Sprintf("../%s/{curie}", table))
		fragment, err := hiccup.Render(markup)
		if err != nil {
			s.writeTreeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, fragment)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

// preferredRoots resolves the preferred-roots toggle: the query parameter
// wins, the config supplies the default.
func (s *Server) preferredRoots(r *http.Request) bool {
	switch r.URL.Query().Get("preferred-roots") {
	case "true":
		return true
	case "false":
		return false
	default:
		return s.cfg.PreferredRoots
	}
}

func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	s.log.Error("query failed", "err", err)
	writeError(w, http.StatusInternalServerError, "query failed")
}

func (s *Server) writeTreeError(w http.ResponseWriter, err error) {
	var invariant *tree.InvariantError
	var store *ldtab.StoreError
	switch {
	case errors.As(err, &invariant):
		s.log.Error("tree invariant violated", "err", err)
		writeError(w, http.StatusInternalServerError, invariant.Error())
	case errors.As(err, &store):
		s.log.Error("store error", "err", err)
		writeError(w, http.StatusInternalServerError, "store error")
	default:
		s.log.Error("tree build failed", "err", err)
		writeError(w, http.StatusInternalServerError, "tree build failed")
	}
}

func parseOrder(value string) ([]query.Order, error) {
	var order []query.Order
	for _, term := range strings.Split(value, ",") {
		column, direction, _ := strings.Cut(term, ".")
		o := query.Order{Column: column}
		switch direction {
		case "", "asc":
		case "desc":
			o.Descending = true
		default:
			return nil, fmt.Errorf("serve: unknown order direction %q", direction)
		}
		order = append(order, o)
	}
	return order, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
