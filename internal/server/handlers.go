package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/docx"
	"github.com/sells-group/review-cli/internal/extract"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/pipeline"
	"github.com/sells-group/review-cli/internal/reconcile"
	"github.com/sells-group/review-cli/internal/store"
	"github.com/sells-group/review-cli/internal/workbook"
)

const (
	extractFilename    = "extracted_data.xlsx"
	comparisonFilename = "comparison.xlsx"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeWorkbook(w http.ResponseWriter, filename, runID string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if runID != "" {
		w.Header().Set("X-Run-ID", runID)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseUpload parses a multipart form no larger than the upload limit.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return false
	}
	return true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "open upload %s", fh.Filename)
	}
	defer f.Close() //nolint:errcheck
	data, err := io.ReadAll(f)
	return data, eris.Wrapf(err, "read upload %s", fh.Filename)
}

// formFile returns the single uploaded file under field, or nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func hasExt(name, ext string) bool {
	return model.Fold(filepath.Ext(name)) == model.Fold(ext)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r) {
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	sources := make([]extract.Source, 0, len(files))
	for _, fh := range files {
		if !hasExt(fh.Filename, ".docx") {
			writeError(w, http.StatusBadRequest, "only .docx files are accepted: "+fh.Filename)
			return
		}
		data, err := readPart(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sources = append(sources, docx.BytesSource{Filename: fh.Filename, Data: data})
	}

	var buf bytes.Buffer
	res, err := s.pipeline.Extract(r.Context(), pipeline.ExtractRequest{
		Sources:    sources,
		Output:     &buf,
		OutputName: extractFilename,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	w.Header().Set("X-Extract-Failures", strconv.Itoa(len(res.Failures)))
	writeWorkbook(w, extractFilename, res.RunID, buf.Bytes())
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r) {
		return
	}
	var sources [2]workbook.BytesSource
	for i, field := range []string{"file1", "file2"} {
		fh := formFile(r, field)
		if fh == nil {
			writeError(w, http.StatusBadRequest, "missing "+field)
			return
		}
		if !hasExt(fh.Filename, ".xlsx") {
			writeError(w, http.StatusBadRequest, "only .xlsx files are accepted: "+fh.Filename)
			return
		}
		data, err := readPart(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sources[i] = workbook.BytesSource{Filename: fh.Filename, Data: data}
	}

	var buf bytes.Buffer
	res, err := s.pipeline.Compare(r.Context(), pipeline.CompareRequest{
		Left:       sources[0],
		Right:      sources[1],
		Output:     &buf,
		OutputName: comparisonFilename,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if res.Err != nil {
		w.Header().Set("X-Comparison-Warning", comparisonWarning(res.Err))
	}
	writeWorkbook(w, comparisonFilename, res.RunID, buf.Bytes())
}

func comparisonWarning(err error) string {
	if eris.Is(err, reconcile.ErrMissingKey) {
		return reconcile.MissingKeyMsg
	}
	return reconcile.MissingColumnMsg
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r) {
		return
	}
	fh := formFile(r, "file")
	if fh == nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	data, err := readPart(fh)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, ok := reconcile.ParseAnswerRule(r.FormValue("rule"))
	if !ok {
		writeError(w, http.StatusBadRequest, "rule must be exact or contains")
		return
	}

	res, err := s.pipeline.Analyze(r.Context(), pipeline.AnalyzeRequest{
		Source: workbook.BytesSource{Filename: fh.Filename, Data: data},
		Column: r.FormValue("column"),
		Rule:   rule,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run history is disabled")
		return false
	}
	return true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	q := r.URL.Query()
	filter := store.RunFilter{
		Kind:   model.RunKind(q.Get("kind")),
		Status: model.RunStatus(q.Get("status")),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.store.GetRun(r.Context(), id); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}

	records, err := s.store.GetRecords(r.Context(), id)
	if err != nil {
		zap.L().Error("server: get records", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get records failed")
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": s.pipeline.Spec().Names(),
		"rows":    records,
	})
}
