package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"linview/internal/config"
	"linview/internal/models"
	"linview/internal/naming"
	"linview/internal/pdfmeta"
	"linview/internal/storage"
	"linview/internal/util"
	"linview/internal/workflows"

	tclient "go.temporal.io/sdk/client"
)

type FileStore interface {
	ListFiles(ctx context.Context) ([]models.FileRecord, error)
	GetFile(ctx context.Context, name string) (models.FileRecord, error)
}

type ReportStore interface {
	InsertReport(ctx context.Context, rep models.LoadReport) (models.LoadReport, error)
	ListReports(ctx context.Context, baseName string, limit int) ([]models.LoadReport, error)
}

// Preparer produces the linearized variant of an uploaded original.
type Preparer interface {
	Prepare(ctx context.Context, in workflows.PrepareVariantsInput) (workflows.PrepareVariantsResult, error)
}

type Server struct {
	cfg      config.Config
	tags     naming.Tags
	files    FileStore
	reports  ReportStore
	preparer Preparer
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	if err := util.EnsureDir(cfg.PDFDir); err != nil {
		panic(err)
	}
	return newServer(cfg, storage.NewFileRepo(db), storage.NewReportRepo(db), &temporalPreparer{client: tc, taskQueue: cfg.TemporalTaskQueue})
}

func newServer(cfg config.Config, files FileStore, reports ReportStore, preparer Preparer) *Server {
	return &Server{cfg: cfg, tags: cfg.Tags(), files: files, reports: reports, preparer: preparer}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/files", s.handleFiles)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/pdf/", s.handlePDF)
	mux.HandleFunc("/reports", s.handleReports)
	return withCORS(s.cfg.AllowedOrigin, mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	records, err := s.files.ListFiles(r.Context())
	if err != nil {
		log.Printf("list files from db failed, scanning dir=%s err=%v", s.cfg.PDFDir, err)
		records, err = scanDir(s.cfg.PDFDir, s.tags)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
	}
	out := make([]models.FileInfo, 0, len(records))
	for _, rec := range records {
		base, _ := s.tags.BaseName(rec.Name)
		out = append(out, models.FileInfo{
			Name:      rec.Name,
			Size:      rec.SizeBytes,
			Created:   float64(rec.CreatedAt.UnixNano()) / 1e9,
			IsLinear:  s.tags.Classify(rec.Name) == naming.VariantLinearized,
			PairName:  s.tags.PairName(rec.Name),
			BaseName:  base,
			PageCount: rec.PageCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func scanDir(dir string, tags naming.Tags) ([]models.FileRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf dir: %w", err)
	}
	out := make([]models.FileRecord, 0)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		base, _ := tags.BaseName(e.Name())
		out = append(out, models.FileRecord{
			Name:      e.Name(),
			BaseName:  base,
			Variant:   tags.Classify(e.Name()).String(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	maxBytes := s.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeErr(w, http.StatusRequestEntityTooLarge, util.ErrUploadTooLarge)
			return
		}
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh, ok := uploadedFile(r.MultipartForm)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}
	base, err := util.SanitizeFilename(fh.Filename)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	original := s.tags.Name(naming.VariantOriginal, base)
	linear := s.tags.Name(naming.VariantLinearized, base)

	if err := saveUploadedFile(filepath.Join(s.cfg.PDFDir, original), fh, maxBytes); err != nil {
		switch {
		case errors.Is(err, util.ErrUploadTooLarge):
			writeErr(w, http.StatusRequestEntityTooLarge, err)
		case errors.Is(err, util.ErrInvalidPDF):
			writeErr(w, http.StatusBadRequest, err)
		default:
			writeErr(w, http.StatusInternalServerError, err)
		}
		return
	}

	started := time.Now()
	res, err := s.preparer.Prepare(r.Context(), workflows.PrepareVariantsInput{
		Dir:          s.cfg.PDFDir,
		BaseName:     base,
		OriginalName: original,
		LinearName:   linear,
	})
	if err != nil {
		log.Printf("prepare variants failed base=%s err=%v", base, err)
		writeErr(w, statusForPrepareError(err), err)
		return
	}
	log.Printf("prepared variants base=%s pages=%d elapsed=%s", base, res.PageCount, time.Since(started).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, models.UploadResult{
		Filename:         res.LinearName,
		OriginalFilename: res.OriginalName,
		PageCount:        res.PageCount,
	})
}

func statusForPrepareError(err error) int {
	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, strings.ToLower(util.ErrInvalidPDF.Error())):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// saveUploadedFile checks the PDF magic and stores the part at path.
func saveUploadedFile(path string, fh *multipart.FileHeader, maxBytes int64) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 5)
	if _, err := io.ReadFull(src, head); err != nil || string(head) != "%PDF-" {
		return util.ErrInvalidPDF
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek upload: %w", err)
	}
	if _, err := util.WriteFileAtomic(path, src, maxBytes); err != nil {
		return err
	}
	return nil
}

func uploadedFile(form *multipart.Form) (*multipart.FileHeader, bool) {
	if fhs := form.File["file"]; len(fhs) > 0 {
		return fhs[0], true
	}
	for _, v := range form.File {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/pdf/")
	path, err := util.StoredPDFPath(s.cfg.PDFDir, name)
	if err != nil {
		writeErr(w, http.StatusNotFound, util.ErrFileNotFound)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeErr(w, http.StatusNotFound, util.ErrFileNotFound)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", "application/pdf")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	if !s.isLinearized(r.Context(), name, path) {
		r.Header.Del("Range")
	}
	http.ServeContent(w, r, name, time.Time{}, f)
}

func (s *Server) isLinearized(ctx context.Context, name, path string) bool {
	if rec, err := s.files.GetFile(ctx, name); err == nil {
		return rec.Linearized
	}
	linear, err := pdfmeta.IsLinearized(path)
	if err != nil {
		return false
	}
	return linear
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		reports, err := s.reports.ListReports(r.Context(), strings.TrimSpace(r.URL.Query().Get("base")), limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
	case http.MethodPost:
		var rep models.LoadReport
		if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
		rep.Document = strings.TrimSpace(rep.Document)
		if rep.Document == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("document is required"))
			return
		}
		if rep.BaseName == "" {
			rep.BaseName, _ = s.tags.BaseName(rep.Document)
		}
		if rep.Variant == "" {
			rep.Variant = s.tags.Classify(rep.Document).String()
		}
		if rep.Attempt < 1 {
			rep.Attempt = 1
		}
		rep.ReportID = ""
		saved, err := s.reports.InsertReport(r.Context(), rep)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "LV-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "pdf linearization failed"):
			return apiError{
				Code:    "LV-PDF-5001",
				Message: "PDF linearization failed",
			}
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "LV-DB-5001",
				Message: "Database schema is not initialized. Restart the service and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "LV-DB-5002",
				Message: "A backing service is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "LV-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "LV-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "LV-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "LV-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusRequestEntityTooLarge:
		code = "LV-API-4013"
		msg = "Uploaded file exceeds the size limit."
	case status == http.StatusUnprocessableEntity:
		code = "LV-PDF-4022"
		msg = "Uploaded file is not a readable PDF."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "no files provided"):
			msg = "No PDF file was provided."
		case strings.Contains(raw, "invalid file name"):
			msg = "File name must end in .pdf."
		case strings.Contains(raw, "not a valid pdf"):
			msg = "Uploaded file is not a PDF."
		case strings.Contains(raw, "document is required"):
			msg = "Report document is required."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(origin string, next http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Range, Accept-Ranges, Content-Length, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
