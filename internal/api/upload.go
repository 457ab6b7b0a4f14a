package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/scan"
	"github.com/Zuo-Peng/chatx/internal/session"
	"github.com/Zuo-Peng/chatx/internal/stats"
	"github.com/dustin/go-humanize"
)

const multipartMemory = 32 << 20

// SummaryResponse is returned by upload and session lookups.
type SummaryResponse struct {
	SessionID      string            `json:"sessionId"`
	BaseName       string            `json:"baseName"`
	Stats          stats.Summary     `json:"stats"`
	Preview        []parse.Record    `json:"preview"`
	TotalRows      int               `json:"totalRows"`
	FilesProcessed int               `json:"filesProcessed"`
	Errors         []parse.FileError `json:"errors"`
	ExpiresAt      string            `json:"expiresAt"`
}

type uploadErrorResponse struct {
	Error  string            `json:"error"`
	Errors []parse.FileError `json:"errors"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %s", humanize.IBytes(uint64(tooLarge.Limit))))
			return
		}
		sendError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		sendError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var (
		sources []parse.Source
		names   []string
		total   int64
	)
	for _, fh := range headers {
		names = append(names, fh.Filename)
		total += fh.Size
		data, err := readPart(fh)
		if err != nil {
			sources = append(sources, parse.Source{Name: fh.Filename, Err: err})
			continue
		}
		sources = append(sources, scan.FromBytes(fh.Filename, data)...)
	}

	result, err := parse.ParseSources(sources)
	if err != nil {
		if errors.Is(err, parse.ErrUnsupportedFormat) {
			sendJSON(w, http.StatusUnprocessableEntity, uploadErrorResponse{
				Error:  parse.ErrUnsupportedFormat.Error(),
				Errors: nonNilErrors(result),
			})
			return
		}
		sendError(w, http.StatusInternalServerError, "parse failed")
		return
	}

	sess := session.New(scan.BaseName(names...), result, s.Now())
	if err := s.Store.Put(r.Context(), sess); err != nil {
		log.Printf("store session: %v", err)
		sendError(w, http.StatusInternalServerError, "could not store session")
		return
	}

	log.Printf("session %s: %d file(s), %s, %d record(s)",
		sess.ID, len(headers), humanize.Bytes(uint64(total)), len(sess.Records))

	sendJSON(w, http.StatusOK, s.summarize(sess, sess.Records, sess.Stats, s.Config.PreviewRows))
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func nonNilErrors(result *parse.ParseResult) []parse.FileError {
	if result == nil || result.Errors == nil {
		return []parse.FileError{}
	}
	return result.Errors
}

func (s *Server) summarize(sess *session.Session, records []parse.Record, summary stats.Summary, limit int) SummaryResponse {
	preview := records
	if len(preview) > limit {
		preview = preview[:limit]
	}
	if preview == nil {
		preview = []parse.Record{}
	}
	fileErrors := sess.Errors
	if fileErrors == nil {
		fileErrors = []parse.FileError{}
	}
	return SummaryResponse{
		SessionID:      sess.ID,
		BaseName:       sess.BaseName,
		Stats:          summary,
		Preview:        preview,
		TotalRows:      len(records),
		FilesProcessed: sess.FilesProcessed,
		Errors:         fileErrors,
		ExpiresAt:      sess.CreatedAt.Add(s.Config.SessionTTL).UTC().Format(time.RFC3339),
	}
}
