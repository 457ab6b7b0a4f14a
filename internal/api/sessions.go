package api

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/export"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/session"
	"github.com/Zuo-Peng/chatx/internal/stats"
	"github.com/go-chi/chi/v5"
)

func filterFromQuery(q url.Values) search.Options {
	return search.Options{
		Sender:   q.Get("sender"),
		DateFrom: strings.TrimSpace(q.Get("dateFrom")),
		DateTo:   strings.TrimSpace(q.Get("dateTo")),
		Keyword:  q.Get("keyword"),
	}
}

// previewLimit bounds the preview slice to [1, bound]; empty means bound.
func previewLimit(raw string, bound int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return bound, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if n > bound {
		n = bound
	}
	return n, nil
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := previewLimit(q.Get("limit"), s.Config.PreviewRows)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}

	opts := filterFromQuery(q)
	records := sess.Records
	summary := sess.Stats
	if opts.Active() {
		records = search.Filter(sess.Records, opts)
		summary = stats.Compute(records)
	}
	sendJSON(w, http.StatusOK, s.summarize(sess, records, summary, limit))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	delim := s.Config.DelimiterRune()
	if raw := q.Get("delimiter"); raw != "" {
		d, err := config.ParseDelimiter(raw)
		if err != nil {
			sendError(w, http.StatusBadRequest, err.Error())
			return
		}
		delim = d
	}

	id := chi.URLParam(r, "id")
	sess, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	payload, err := export.Render(search.Filter(sess.Records, filterFromQuery(q)), export.Options{
		Format:    export.ParseFormat(q.Get("format")),
		Columns:   export.ParseColumns(q.Get("columns")),
		Delimiter: delim,
		BaseName:  sess.BaseName,
	})
	if err != nil {
		log.Printf("export session %s: %v", id, err)
		sendError(w, http.StatusInternalServerError, "export failed")
		return
	}

	// consume only once the payload exists; a concurrent export that got
	// here first wins and this one sees not found
	if _, err := s.Store.TakeOnce(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}

	w.Header().Set("Content-Type", payload.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": payload.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(payload.Body)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		sendNotFound(w)
		return
	}
	log.Printf("session store: %v", err)
	sendError(w, http.StatusInternalServerError, "session store unavailable")
}
