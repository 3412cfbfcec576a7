package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"example.com/bayerfix/internal/common"
	"example.com/bayerfix/internal/frame"
	"example.com/bayerfix/internal/imageio"
	"example.com/bayerfix/internal/manifest"
	"example.com/bayerfix/internal/repair"
	"example.com/bayerfix/internal/report"
)

// Server coordinates HTTP handlers and manages temporary artifacts produced
// by frame analysis requests.
type Server struct {
	artifacts    *ArtifactStore
	workDir      string
	uploadsDir   string
	geometries   map[string]frame.Geometry
	profileNames []string
	repairLog    *common.RepairLog
	concurrency  int
}

// Artifact represents a file generated or stored by the daemon.
type Artifact struct {
	ID          string
	Path        string
	Name        string
	ContentType string
	Size        int64
	Kind        string
}

// ArtifactRef is the public representation returned in API responses.
type ArtifactRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// ArtifactStore keeps track of generated artifacts for later download.
type ArtifactStore struct {
	mu      sync.RWMutex
	entries map[string]Artifact
}

// NewServer constructs a Server rooted at a temporary workspace directory.
func NewServer(opts Options) (*Server, error) {
	storageDir := opts.StorageDir
	if storageDir == "" {
		storageDir = os.TempDir()
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(storageDir, "bayerd-")
	if err != nil {
		return nil, err
	}
	uploadsDir := filepath.Join(workDir, "uploads")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	geometries, profileNames, err := buildProfileMap(opts)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	s := &Server{
		artifacts:    &ArtifactStore{entries: make(map[string]Artifact)},
		workDir:      workDir,
		uploadsDir:   uploadsDir,
		geometries:   geometries,
		profileNames: profileNames,
		repairLog:    common.NewRepairLog(filepath.Join(workDir, "repairs.jsonl")),
		concurrency:  concurrency,
	}
	return s, nil
}

// Close removes any temporary state associated with the server.
func (s *Server) Close() error {
	if s == nil || s.workDir == "" {
		return nil
	}
	return os.RemoveAll(s.workDir)
}

func (s *Server) geometryFor(name string) (frame.Geometry, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultProfileName
	}
	geo, ok := s.geometries[name]
	if !ok {
		return frame.Geometry{}, fmt.Errorf("unknown geometry profile %s", name)
	}
	return geo, nil
}

func (s *Server) tempPath(pattern string) (string, error) {
	f, err := os.CreateTemp(s.workDir, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

func (s *Server) addArtifact(path, displayName, contentType, kind string) (Artifact, error) {
	if path == "" {
		return Artifact{}, errors.New("empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}
	id := randomID()
	art := Artifact{
		ID:          id,
		Path:        path,
		Name:        displayName,
		ContentType: contentType,
		Size:        info.Size(),
		Kind:        kind,
	}
	if art.Name == "" {
		art.Name = filepath.Base(path)
	}
	if art.ContentType == "" {
		art.ContentType = guessContentType(art.Name)
	}
	s.artifacts.mu.Lock()
	s.artifacts.entries[id] = art
	s.artifacts.mu.Unlock()
	return art, nil
}

func (s *Server) getArtifact(id string) (Artifact, bool) {
	s.artifacts.mu.RLock()
	art, ok := s.artifacts.entries[id]
	s.artifacts.mu.RUnlock()
	return art, ok
}

func (s *Server) resolvePath(token string) (string, error) {
	if token == "" {
		return "", errors.New("empty input path")
	}
	if art, ok := s.getArtifact(token); ok {
		return art.Path, nil
	}
	abs := token
	if !filepath.IsAbs(token) {
		abs = filepath.Clean(token)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (s *Server) loadFrame(token, profile string) (*frame.RawFrame, string, error) {
	inputPath, err := s.resolvePath(token)
	if err != nil {
		return nil, "", fmt.Errorf("input resolve: %w", err)
	}
	geo, err := s.geometryFor(profile)
	if err != nil {
		return nil, "", err
	}
	f, err := frame.Load(inputPath, geo)
	if err != nil {
		return nil, "", fmt.Errorf("load frame: %w", err)
	}
	return f, inputPath, nil
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Input    string `json:"input"`
		Geometry string `json:"geometry"`
		Scores   bool   `json:"scores"`
		PDF      bool   `json:"pdf"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if req.Input == "" {
		http.Error(w, "input required", http.StatusBadRequest)
		return
	}
	f, inputPath, err := s.loadFrame(req.Input, req.Geometry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rep, err := report.Inspect(f, inputPath, req.Scores)
	if err != nil {
		http.Error(w, fmt.Sprintf("inspect: %v", err), http.StatusInternalServerError)
		return
	}
	jsonPath, err := s.tempPath("report-*.json")
	if err != nil {
		http.Error(w, fmt.Sprintf("report temp: %v", err), http.StatusInternalServerError)
		return
	}
	if err := report.SaveFrameReportJSON(rep, jsonPath); err != nil {
		http.Error(w, fmt.Sprintf("write report: %v", err), http.StatusInternalServerError)
		return
	}
	jsonArt, err := s.addArtifact(jsonPath, "frame_report.json", "application/json", "report")
	if err != nil {
		http.Error(w, fmt.Sprintf("register report: %v", err), http.StatusInternalServerError)
		return
	}
	artifacts := []ArtifactRef{toRef(jsonArt)}
	if req.PDF {
		pdfPath, err := s.tempPath("report-*.pdf")
		if err != nil {
			http.Error(w, fmt.Sprintf("report pdf temp: %v", err), http.StatusInternalServerError)
			return
		}
		if err := report.SaveFramePDF(rep, pdfPath); err != nil {
			http.Error(w, fmt.Sprintf("write report pdf: %v", err), http.StatusInternalServerError)
			return
		}
		pdfArt, err := s.addArtifact(pdfPath, "frame_report.pdf", "application/pdf", "report")
		if err != nil {
			http.Error(w, fmt.Sprintf("register report pdf: %v", err), http.StatusInternalServerError)
			return
		}
		artifacts = append(artifacts, toRef(pdfArt))
	}
	resp := struct {
		Report    report.FrameReport `json:"report"`
		Artifacts []ArtifactRef      `json:"artifacts"`
	}{
		Report:    rep,
		Artifacts: artifacts,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stream := r.URL.Query().Get("stream") == "true"
	var req struct {
		Input    string `json:"input"`
		Geometry string `json:"geometry"`
		Overlay  bool   `json:"overlay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if req.Input == "" {
		http.Error(w, "input required", http.StatusBadRequest)
		return
	}
	f, _, err := s.loadFrame(req.Input, req.Geometry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	geo := f.Geometry()
	pix := f.PixelRegion()

	var writer *NDJSONWriter
	if stream {
		writer = NewNDJSONWriter(w)
		w.Header().Set("Content-Type", "application/x-ndjson")
	}
	scores, err := repair.ScorePatches(pix, geo.Width, geo.PixelRows(), geo.PatchSize)
	if err != nil {
		if stream {
			_ = writer.WriteError(err)
		} else {
			http.Error(w, fmt.Sprintf("score: %v", err), http.StatusInternalServerError)
		}
		return
	}
	if stream {
		for _, sc := range scores {
			if err := writer.WriteScore(sc); err != nil {
				return
			}
		}
	}
	event, err := repair.DetectShift(scores)
	if err != nil {
		if stream {
			_ = writer.WriteError(err)
		} else {
			http.Error(w, fmt.Sprintf("detect: %v", err), http.StatusInternalServerError)
		}
		return
	}
	row := event.DetectedOffset / geo.Width
	col := event.DetectedOffset % geo.Width
	var artifacts []ArtifactRef
	if req.Overlay {
		img, err := imageio.RenderDetectionOverlay(pix, geo.Width, geo.PixelRows(), row, col)
		if err == nil {
			overlayPath, perr := s.tempPath("overlay-*.png")
			if perr == nil && imageio.WritePNG(overlayPath, img, 3) == nil {
				if art, aerr := s.addArtifact(overlayPath, "detection_overlay.png", "image/png", "overlay"); aerr == nil {
					artifacts = append(artifacts, toRef(art))
				}
			}
		}
	}
	result := struct {
		Type           string        `json:"type,omitempty"`
		DetectedOffset int           `json:"detectedOffset"`
		Row            int           `json:"row"`
		Col            int           `json:"col"`
		MaxDiff        float64       `json:"maxDiff"`
		Scores         int           `json:"scores"`
		Artifacts      []ArtifactRef `json:"artifacts,omitempty"`
	}{
		DetectedOffset: event.DetectedOffset,
		Row:            row,
		Col:            col,
		MaxDiff:        event.MaxDiff,
		Scores:         len(scores),
		Artifacts:      artifacts,
	}
	if stream {
		result.Type = "detection"
		_ = writer.WriteObject(result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Input    string `json:"input"`
		Geometry string `json:"geometry"`
		DryRun   bool   `json:"dryRun"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if req.Input == "" {
		http.Error(w, "input required", http.StatusBadRequest)
		return
	}
	f, inputPath, err := s.loadFrame(req.Input, req.Geometry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	geo := f.Geometry()
	scores, err := repair.ScorePatches(f.PixelRegion(), geo.Width, geo.PixelRows(), geo.PatchSize)
	if err != nil {
		http.Error(w, fmt.Sprintf("score: %v", err), http.StatusInternalServerError)
		return
	}
	event, err := repair.DetectShift(scores)
	if err != nil {
		http.Error(w, fmt.Sprintf("detect: %v", err), http.StatusInternalServerError)
		return
	}
	// Detection offsets are relative to the pixel region; the header row
	// precedes it in the frame buffer.
	frameOffset := event.DetectedOffset + geo.Width
	resp := struct {
		DetectedOffset int           `json:"detectedOffset"`
		FrameOffset    int           `json:"frameOffset"`
		MaxDiff        float64       `json:"maxDiff"`
		DryRun         bool          `json:"dryRun"`
		Artifacts      []ArtifactRef `json:"artifacts,omitempty"`
	}{
		DetectedOffset: event.DetectedOffset,
		FrameOffset:    frameOffset,
		MaxDiff:        event.MaxDiff,
		DryRun:         req.DryRun,
	}
	if !req.DryRun {
		fixed, err := repair.CorrectShift(f.Bytes(), frameOffset)
		if err != nil {
			http.Error(w, fmt.Sprintf("correct: %v", err), http.StatusInternalServerError)
			return
		}
		outPath, err := s.tempPath("fixed-*.bin")
		if err != nil {
			http.Error(w, fmt.Sprintf("fixed temp: %v", err), http.StatusInternalServerError)
			return
		}
		if err := os.WriteFile(outPath, fixed, 0644); err != nil {
			http.Error(w, fmt.Sprintf("write fixed: %v", err), http.StatusInternalServerError)
			return
		}
		art, err := s.addArtifact(outPath, "fixed_"+filepath.Base(inputPath), "application/octet-stream", "fixed")
		if err != nil {
			http.Error(w, fmt.Sprintf("register fixed: %v", err), http.StatusInternalServerError)
			return
		}
		resp.Artifacts = append(resp.Artifacts, toRef(art))
		beforeSha := common.Sha256OfBytes(f.Bytes())
		afterSha := common.Sha256OfBytes(fixed)
		if err := s.repairLog.Append(common.RepairEntry{
			Op:           "fix",
			File:         inputPath,
			Offset:       int64(frameOffset),
			BeforeSha256: beforeSha,
			AfterSha256:  afterSha,
		}); err != nil {
			common.Logf("repair log append: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Inputs  []string `json:"inputs"`
		ShaAlgo string   `json:"shaAlgo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Inputs) == 0 {
		http.Error(w, "inputs required", http.StatusBadRequest)
		return
	}
	if req.ShaAlgo != "" && !strings.EqualFold(req.ShaAlgo, "sha256") {
		http.Error(w, "only sha256 supported", http.StatusBadRequest)
		return
	}
	var paths []string
	for _, in := range req.Inputs {
		resolved, err := s.resolvePath(in)
		if err != nil {
			http.Error(w, fmt.Sprintf("resolve %s: %v", in, err), http.StatusBadRequest)
			return
		}
		paths = append(paths, resolved)
	}
	m, err := manifest.BuildConcurrent(paths, s.concurrency)
	if err != nil {
		http.Error(w, fmt.Sprintf("build manifest: %v", err), http.StatusInternalServerError)
		return
	}
	outPath, err := s.tempPath("manifest-*.json")
	if err != nil {
		http.Error(w, fmt.Sprintf("manifest temp: %v", err), http.StatusInternalServerError)
		return
	}
	if err := manifest.Save(m, outPath); err != nil {
		http.Error(w, fmt.Sprintf("write manifest: %v", err), http.StatusInternalServerError)
		return
	}
	art, err := s.addArtifact(outPath, "manifest.json", "application/json", "manifest")
	if err != nil {
		http.Error(w, fmt.Sprintf("register manifest: %v", err), http.StatusInternalServerError)
		return
	}
	resp := struct {
		Manifest manifest.Manifest `json:"manifest"`
		Artifact ArtifactRef       `json:"artifact"`
	}{
		Manifest: m,
		Artifact: toRef(art),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGeometries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.profileNames)
}

func (s *Server) handleArtifactList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.listArtifacts())
}

func (s *Server) handleArtifactDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/artifacts/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	art, ok := s.getArtifact(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(art.Path)
	if err != nil {
		http.Error(w, fmt.Sprintf("open artifact: %v", err), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, fmt.Sprintf("stat artifact: %v", err), http.StatusInternalServerError)
		return
	}
	if art.ContentType != "" {
		w.Header().Set("Content-Type", art.ContentType)
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	disposition := fmt.Sprintf("attachment; filename=\"%s\"", art.Name)
	w.Header().Set("Content-Disposition", disposition)
	io.Copy(w, f)
}

func toRef(art Artifact) ArtifactRef {
	return ArtifactRef{
		ID:          art.ID,
		Name:        art.Name,
		ContentType: art.ContentType,
		Size:        art.Size,
		Kind:        art.Kind,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func guessContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".ndjson", ".jsonl":
		return "application/x-ndjson"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".txt":
		return "text/plain"
	case ".bin", ".raw":
		return "application/octet-stream"
	default:
		return "application/octet-stream"
	}
}

func randomID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		now := time.Now().UTC()
		return fmt.Sprintf("%d%06d", now.UnixNano(), os.Getpid())
	}
	return hex.EncodeToString(b[:])
}

func (s *Server) listArtifacts() []ArtifactRef {
	s.artifacts.mu.RLock()
	refs := make([]ArtifactRef, 0, len(s.artifacts.entries))
	for _, art := range s.artifacts.entries {
		refs = append(refs, toRef(art))
	}
	s.artifacts.mu.RUnlock()
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs
}
