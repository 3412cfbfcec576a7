package report

import (
	"encoding/json"
	"os"
	"time"

	"example.com/bayerfix/internal/frame"
)

type Severity string

const (
	ERROR Severity = "ERROR"
	WARN  Severity = "WARN"
	INFO  Severity = "INFO"
)

// Finding is one observation about a frame, in the shape downstream tooling
// already consumes from other acceptance pipelines.
type Finding struct {
	Ts       time.Time `json:"ts"`
	File     string    `json:"file"`
	CheckId  string    `json:"checkId"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Offset   string    `json:"offset,omitempty"`
}

// ScoreStats summarizes a patch-score scan of the pixel region.
type ScoreStats struct {
	Count          int     `json:"count"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	MaxDiff        float64 `json:"maxDiff"`
	DetectedOffset *int    `json:"detectedOffset,omitempty"`
}

// FrameReport is the full inspection record for one frame.
type FrameReport struct {
	File      string      `json:"file"`
	FileID    string      `json:"fileId,omitempty"`
	Sha256    string      `json:"sha256,omitempty"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Metadata  *Metadata   `json:"metadata,omitempty"`
	Scores    *ScoreStats `json:"scores,omitempty"`
	Summary   Summary     `json:"summary"`
	Findings  []Finding   `json:"findings,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Metadata mirrors frame.Metadata with wire-friendly field encodings.
type Metadata struct {
	AnalogGain         uint8   `json:"analogGain"`
	IntegrationTimeRaw uint16  `json:"integrationTimeRaw"`
	IntegrationTimeMs  float64 `json:"integrationTimeMs"`
	HeaderHex          string  `json:"headerHex"`
	FooterHex          string  `json:"footerHex"`
}

type Summary struct {
	Total    int  `json:"total"`
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Pass     bool `json:"pass"`
}

// Finalize recomputes the summary from the accumulated findings.
func (r *FrameReport) Finalize() {
	s := Summary{Total: len(r.Findings), Pass: true}
	for _, f := range r.Findings {
		switch f.Severity {
		case ERROR:
			s.Errors++
			s.Pass = false
		case WARN:
			s.Warnings++
		}
	}
	r.Summary = s
}

// AddFinding appends a finding stamped with the report's file and the
// current time.
func (r *FrameReport) AddFinding(checkId string, sev Severity, message, offset string) {
	r.Findings = append(r.Findings, Finding{
		Ts:       time.Now().UTC(),
		File:     r.File,
		CheckId:  checkId,
		Severity: sev,
		Message:  message,
		Offset:   offset,
	})
}

func metadataFromFrame(md frame.Metadata) *Metadata {
	return &Metadata{
		AnalogGain:         md.AnalogGain,
		IntegrationTimeRaw: md.IntegrationTimeRaw,
		IntegrationTimeMs:  md.IntegrationTimeMs,
		HeaderHex:          hexJoin(md.Header),
		FooterHex:          hexJoin(md.Footer),
	}
}

func SaveFrameReportJSON(rep FrameReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadFrameReportJSON(path string) (FrameReport, error) {
	var rep FrameReport
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
