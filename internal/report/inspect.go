package report

import (
	"fmt"
	"strings"
	"time"

	"example.com/bayerfix/internal/common"
	"example.com/bayerfix/internal/frame"
	"example.com/bayerfix/internal/repair"
)

// Inspect runs the standard frame checks and returns a populated report.
// Scoring and shift detection are optional since a full scan of a real frame
// demosaics a quarter million tiles.
func Inspect(f *frame.RawFrame, path string, withScores bool) (FrameReport, error) {
	geo := f.Geometry()
	rep := FrameReport{
		File:      path,
		FileID:    frame.FileID(path),
		Sha256:    common.Sha256OfBytes(f.Bytes()),
		Width:     geo.Width,
		Height:    geo.Height,
		CreatedAt: time.Now().UTC(),
	}

	md, err := frame.ExtractMetadata(f)
	if err != nil {
		return rep, err
	}
	md.FileID = rep.FileID
	rep.Metadata = metadataFromFrame(md)

	if f.SizeNormalized() {
		sev := INFO
		verb := "padded"
		if f.SourceSize() > int64(geo.FrameSize()) {
			sev = WARN
			verb = "truncated"
		}
		rep.AddFinding("frame.size", sev,
			fmt.Sprintf("source had %d bytes, %s to %d", f.SourceSize(), verb, geo.FrameSize()), "")
	}
	if allZero(md.Header) {
		rep.AddFinding("frame.header", WARN, "header bytes are all zero", "0")
	}
	if allZero(md.Footer) {
		rep.AddFinding("frame.footer", WARN, "footer bytes are all zero",
			fmt.Sprintf("%d", (geo.Height-1)*geo.Width))
	}
	if md.IntegrationTimeRaw == 0 {
		rep.AddFinding("frame.integration", INFO, "integration time is zero", "")
	}

	if withScores {
		scores, err := repair.ScorePatches(f.PixelRegion(), geo.Width, geo.PixelRows(), geo.PatchSize)
		if err != nil {
			return rep, err
		}
		stats := summarizeScores(scores)
		if event, err := repair.DetectShift(scores); err == nil {
			offset := event.DetectedOffset
			stats.DetectedOffset = &offset
			stats.MaxDiff = event.MaxDiff
			rep.AddFinding("frame.shift", INFO,
				fmt.Sprintf("largest Bayer balance discontinuity at pixel-region offset %d (diff %.4f)", offset, event.MaxDiff),
				fmt.Sprintf("%d", offset))
		}
		rep.Scores = &stats
	}

	rep.Finalize()
	return rep, nil
}

func summarizeScores(scores []repair.PatchScore) ScoreStats {
	stats := ScoreStats{Count: len(scores)}
	for i, s := range scores {
		if i == 0 || s.Value < stats.Min {
			stats.Min = s.Value
		}
		if i == 0 || s.Value > stats.Max {
			stats.Max = s.Value
		}
	}
	return stats
}

func allZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return len(data) > 0
}

func hexJoin(data []byte) string {
	parts := make([]string, len(data))
	for i, v := range data {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
