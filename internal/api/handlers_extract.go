package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docread/internal/extractor"
	"github.com/dgallion1/docread/internal/parser"
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}

	staging, err := os.MkdirTemp(s.uploadDir, "docread-upload-*")
	if err != nil {
		jsonError(w, "failed to stage upload", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(staging)

	req, status, err := s.stage(staging, files[0])
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	res := detach(s.extractor.Extract(r.Context(), req))
	code := http.StatusOK
	if !res.Succeeded {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, res)
}

func (s *Server) handleBatchExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	staging, err := os.MkdirTemp(s.uploadDir, "docread-batch-*")
	if err != nil {
		jsonError(w, "failed to stage upload", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(staging)

	var reqs []extractor.DocumentRequest
	var rejected []map[string]any
	for i, fh := range files {
		// Each file gets its own directory so equal names don't collide.
		dir := filepath.Join(staging, fmt.Sprintf("%03d", i))
		if err := os.Mkdir(dir, 0o700); err != nil {
			rejected = append(rejected, map[string]any{"filename": fh.Filename, "error": "failed to stage upload"})
			continue
		}
		req, _, err := s.stage(dir, fh)
		if err != nil {
			rejected = append(rejected, map[string]any{"filename": sanitizeFilename(fh.Filename), "error": err.Error()})
			continue
		}
		reqs = append(reqs, req)
	}

	results := s.runner().Run(r.Context(), reqs)
	for i := range results {
		results[i] = detach(results[i])
	}
	if rejected == nil {
		rejected = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":  results,
		"rejected": rejected,
	})
}

// stage copies one uploaded file into dir and returns the request for it
// plus the HTTP status to use on error. The extracted text is written into
// the same dir, so uploads with equal names never share an output file.
func (s *Server) stage(dir string, fh *multipart.FileHeader) (extractor.DocumentRequest, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return extractor.DocumentRequest{}, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	f, err := fh.Open()
	if err != nil {
		return extractor.DocumentRequest{}, http.StatusBadRequest, fmt.Errorf("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return extractor.DocumentRequest{}, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return extractor.DocumentRequest{}, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return extractor.DocumentRequest{}, http.StatusInternalServerError, fmt.Errorf("failed to stage file")
	}
	return extractor.DocumentRequest{Path: path, DisplayName: filename, OutputDir: dir}, 0, nil
}

// detach drops the output path, which points into the staging dir removed
// when the request ends. The text itself is returned in the body.
func detach(res extractor.Result) extractor.Result {
	res.OutputPath = ""
	return res
}

func sanitizeFilename(name string) string {
	// Normalise Windows separators first so Base strips client-side paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
