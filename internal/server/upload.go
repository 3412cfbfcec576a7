package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// maxUploadMemory bounds the in-memory portion of a multipart parse. A full
// sensor frame runs ~16 MiB, so uploads spill to disk almost immediately.
const maxUploadMemory = 64 << 20

// uploadedFile is one stored upload plus the geometry profiles whose exact
// frame size the upload matches.
type uploadedFile struct {
	ArtifactRef
	GeometryMatches []string `json:"geometryMatches,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart: %v", err), http.StatusBadRequest)
		return
	}
	if r.MultipartForm == nil {
		http.Error(w, "no files provided", http.StatusBadRequest)
		return
	}
	var files []uploadedFile
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			stored, err := s.storeUpload(fh)
			if err != nil {
				http.Error(w, fmt.Sprintf("store %s: %v", fh.Filename, err), http.StatusBadRequest)
				return
			}
			files = append(files, stored)
		}
	}
	if len(files) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return
	}
	resp := struct {
		Files []uploadedFile `json:"files"`
	}{Files: files}
	writeJSON(w, http.StatusOK, resp)
}

// storeUpload writes one multipart part into the uploads directory and
// registers it as an artifact. The original extension is kept on the stored
// name so raw frames stay recognizable next to generated reports.
func (s *Server) storeUpload(fh *multipart.FileHeader) (uploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return uploadedFile{}, err
	}
	defer src.Close()

	pattern := "upload-*"
	if ext := filepath.Ext(fh.Filename); ext != "" {
		pattern += strings.ToLower(ext)
	}
	dst, err := os.CreateTemp(s.uploadsDir, pattern)
	if err != nil {
		return uploadedFile{}, err
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst.Name())
		return uploadedFile{}, err
	}
	art, err := s.addArtifact(dst.Name(), fh.Filename, guessContentType(fh.Filename), "upload")
	if err != nil {
		return uploadedFile{}, err
	}
	return uploadedFile{
		ArtifactRef:     toRef(art),
		GeometryMatches: s.profilesMatchingSize(size),
	}, nil
}

// profilesMatchingSize reports the configured geometry profiles that expect
// exactly size bytes per frame. A mismatch is never an error, since loading
// pads or truncates, but the hint lets clients pick the right profile before
// the first analysis request.
func (s *Server) profilesMatchingSize(size int64) []string {
	var names []string
	for _, name := range s.profileNames {
		if int64(s.geometries[name].FrameSize()) == size {
			names = append(names, name)
		}
	}
	return names
}
