package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-cli/internal/config"
	"github.com/sells-group/review-cli/internal/extract"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/pipeline"
	"github.com/sells-group/review-cli/internal/reconcile"
	"github.com/sells-group/review-cli/internal/store"
	"github.com/sells-group/review-cli/internal/workbook"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{Port: 8080, MaxUploadMB: 4, RatePerSec: 1000, Burst: 1000}
}

func newTestServer(t *testing.T, withStore bool, cfg config.ServerConfig) (*Server, store.Store) {
	t.Helper()
	var st store.Store
	if withStore {
		sq, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { sq.Close() }) //nolint:errcheck
		require.NoError(t, sq.Migrate(context.Background()))
		st = sq
	}
	p := pipeline.New(st, model.DefaultFieldSpec(), extract.MatchSubstring, 2)
	return New(p, st, cfg), st
}

// docxBytes builds a minimal document with one two-column table.
func docxBytes(t *testing.T, rows ...[2]string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<w:tbl>`)
	for _, r := range rows {
		body.WriteString(`<w:tr>`)
		for _, c := range r {
			body.WriteString(`<w:tc><w:p><w:r><w:t>` + c + `</w:t></w:r></w:p></w:tc>`)
		}
		body.WriteString(`</w:tr>`)
	}
	body.WriteString(`</w:tbl>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type upload struct {
	field    string
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func extractionWorkbook(t *testing.T, rows ...[2]string) []byte {
	t.Helper()
	ds := model.NewDataset([]string{rows[0][0], rows[0][1]})
	for _, r := range rows[1:] {
		ds.Append(model.Record{rows[0][0]: model.Str(r[0]), rows[0][1]: model.Str(r[1])})
	}
	var buf bytes.Buffer
	require.NoError(t, workbook.WriteExtraction(&buf, ds))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestExtract(t *testing.T) {
	s, st := newTestServer(t, true, testServerConfig())

	req := multipartRequest(t, "/extract", nil,
		upload{"files", "a.docx", docxBytes(t, [2]string{"Module component", "CS101"}, [2]string{"Problem identified?", "Yes"})},
		upload{"files", "broken.docx", []byte("not a zip")},
		upload{"files", "b.docx", docxBytes(t, [2]string{"Module component", "CS102"})},
	)
	rr := serve(s, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "extracted_data.xlsx")
	assert.Equal(t, "1", rr.Header().Get("X-Extract-Failures"))

	ds, err := workbook.ReadDatasetBytes(rr.Body.Bytes(), workbook.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFieldSpec().Names(), ds.Columns)
	require.Equal(t, 2, ds.Len())
	v, _ := ds.Rows[0].Get(model.FieldModuleComponent)
	assert.Equal(t, "CS101", v)
	v, _ = ds.Rows[0].Get(model.FieldProblemIdentifiedQ)
	assert.Equal(t, "Yes", v)

	runID := rr.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)
	run, err := st.GetRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, 1, run.Result.Failed)
}

func TestExtract_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())

	rr := serve(s, multipartRequest(t, "/extract", map[string]string{"note": "x"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no files uploaded")

	rr = serve(s, multipartRequest(t, "/extract", nil, upload{"files", "notes.txt", []byte("hi")}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), ".docx")

	rr = serve(s, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader("plain")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCompare(t *testing.T) {
	s, _ := newTestServer(t, true, testServerConfig())

	file1 := extractionWorkbook(t,
		[2]string{"Module component", "Problem identified?"},
		[2]string{"Lab", "Yes"},
		[2]string{"Exam", "No"},
	)
	file2 := extractionWorkbook(t,
		[2]string{"Module component", "Problem identified?"},
		[2]string{"Lab", "y"},
	)

	rr := serve(s, multipartRequest(t, "/compare", nil,
		upload{"file1", "one.xlsx", file1},
		upload{"file2", "two.xlsx", file2},
	))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "comparison.xlsx")
	assert.Empty(t, rr.Header().Get("X-Comparison-Warning"))

	joined, err := workbook.ReadDatasetBytes(rr.Body.Bytes(), workbook.ReadOptions{SheetName: workbook.SheetComparison})
	require.NoError(t, err)
	require.Equal(t, 2, joined.Len())
	h, _ := joined.Rows[1].Get(reconcile.HighlightColumn)
	assert.Equal(t, "Yes", h)
}

func TestCompare_MissingKeyWarning(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())

	other := extractionWorkbook(t, [2]string{"Course", "Notes"}, [2]string{"CS101", "ok"})

	rr := serve(s, multipartRequest(t, "/compare", nil,
		upload{"file1", "one.xlsx", other},
		upload{"file2", "two.xlsx", other},
	))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, reconcile.MissingKeyMsg, rr.Header().Get("X-Comparison-Warning"))
}

func TestCompare_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())
	file1 := extractionWorkbook(t, [2]string{"Module component", "x"}, [2]string{"Lab", "1"})

	rr := serve(s, multipartRequest(t, "/compare", nil, upload{"file1", "one.xlsx", file1}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "missing file2")

	rr = serve(s, multipartRequest(t, "/compare", nil,
		upload{"file1", "one.xlsx", file1},
		upload{"file2", "two.csv", []byte("a,b")},
	))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s, multipartRequest(t, "/compare", nil,
		upload{"file1", "one.xlsx", file1},
		upload{"file2", "two.xlsx", []byte("junk")},
	))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "two.xlsx")
}

func TestAnalyze(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())
	data := extractionWorkbook(t,
		[2]string{"Module component", "Problem identified?"},
		[2]string{"Lab", "Yes"},
		[2]string{"Exam", "no"},
		[2]string{"Tutorial", "Y"},
	)

	rr := serve(s, multipartRequest(t, "/analyze", nil, upload{"file", "data.xlsx", data}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res pipeline.AnalyzeResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "Problem identified?", res.Column)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 3, res.Rows)

	rr = serve(s, multipartRequest(t, "/analyze", map[string]string{"rule": "contains"}, upload{"file", "data.xlsx", data}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, reconcile.AnswerContains, res.Rule)
	assert.Equal(t, 2, res.Count)

	rr = serve(s, multipartRequest(t, "/analyze", map[string]string{"rule": "regex"}, upload{"file", "data.xlsx", data}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "exact or contains")

	rr = serve(s, multipartRequest(t, "/analyze", map[string]string{"column": "Signed off?"}, upload{"file", "data.xlsx", data}))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = serve(s, multipartRequest(t, "/analyze", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRuns(t *testing.T) {
	s, st := newTestServer(t, true, testServerConfig())
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunKindExtract, []string{"a.docx"})
	require.NoError(t, err)
	require.NoError(t, st.SaveRecords(ctx, run.ID, []model.Record{{model.FieldModuleComponent: model.Str("CS101")}}))
	_, err = st.CreateRun(ctx, model.RunKindCompare, []string{"1.xlsx", "2.xlsx"})
	require.NoError(t, err)

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/runs", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	assert.Len(t, runs, 2)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/runs?kind=compare&limit=5", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunKindCompare, runs[0].Kind)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/runs?limit=abc", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	var got model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID+"/records", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	var records struct {
		Columns []string       `json:"columns"`
		Rows    []model.Record `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	assert.Equal(t, model.DefaultFieldSpec().Names(), records.Columns)
	require.Len(t, records.Rows, 1)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/runs/missing", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/runs/missing/records", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRuns_Disabled(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/runs", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "disabled")
}

func TestRateLimit(t *testing.T) {
	cfg := testServerConfig()
	cfg.RatePerSec = 0.001
	cfg.Burst = 1
	s, _ := newTestServer(t, false, cfg)

	rr := serve(s, multipartRequest(t, "/analyze", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s, multipartRequest(t, "/analyze", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	// Read-only routes are not limited.
	rr = serve(s, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())

	serve(s, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	rr := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "review_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, false, testServerConfig())

	req := httptest.NewRequest(http.MethodOptions, "/extract", http.NoBody)
	req.Header.Set("Origin", "https://reviews.example.edu")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rr := serve(s, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverer(t *testing.T) {
	h := jsonRecoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rr.Body.String())
}
