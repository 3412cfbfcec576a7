package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// SaveFramePDF renders the frame inspection report into a PDF document. When
// the report carries a SHA-256, a QR code of the hash is stamped on the page
// for provenance checks against the manifest.
func SaveFramePDF(rep FrameReport, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Frame Inspection Report", false)
	pdf.SetAuthor("bayerctl", false)
	pdf.SetCreator("bayerctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Frame Inspection Report")
	addFrameSection(pdf, rep)
	addMetadataSection(pdf, rep.Metadata)
	addScoreSection(pdf, rep.Scores)
	addFindingsSection(pdf, rep)
	addHashQR(pdf, rep.Sha256)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addFrameSection(pdf *gofpdf.Fpdf, rep FrameReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Frame")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "File", value: rep.File},
		{label: "Frame ID", value: emptyFallback(rep.FileID, "-")},
		{label: "Geometry", value: fmt.Sprintf("%d x %d", rep.Width, rep.Height)},
		{label: "Overall", value: passLabel(rep.Summary.Pass)},
	}
	if !rep.CreatedAt.IsZero() {
		items = append(items, struct {
			label string
			value string
		}{label: "Inspected", value: rep.CreatedAt.Format(time.RFC3339)})
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addMetadataSection(pdf *gofpdf.Fpdf, md *Metadata) {
	if md == nil {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Sensor Metadata")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	rows := []struct {
		label string
		value string
	}{
		{label: "Analog Gain", value: fmt.Sprintf("0x%02X (%d)", md.AnalogGain, md.AnalogGain)},
		{label: "Integration Time", value: fmt.Sprintf("0x%04X (%d = %.3f ms)", md.IntegrationTimeRaw, md.IntegrationTimeRaw, md.IntegrationTimeMs)},
	}
	for _, row := range rows {
		pdf.CellFormat(50, 6, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row.value, "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(50, 5, "Header", "", 0, "L", false, 0, "")
	pdf.MultiCell(0, 5, md.HeaderHex, "", "L", false)
	pdf.CellFormat(50, 5, "Footer", "", 0, "L", false, 0, "")
	pdf.MultiCell(0, 5, md.FooterHex, "", "L", false)
	pdf.Ln(4)
}

func addScoreSection(pdf *gofpdf.Fpdf, stats *ScoreStats) {
	if stats == nil {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Bayer Balance Scan")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	rows := []struct {
		label string
		value string
	}{
		{label: "Patches", value: strconv.Itoa(stats.Count)},
		{label: "Score Range", value: fmt.Sprintf("%.4f .. %.4f", stats.Min, stats.Max)},
		{label: "Max Adjacent Diff", value: fmt.Sprintf("%.4f", stats.MaxDiff)},
	}
	if stats.DetectedOffset != nil {
		rows = append(rows, struct {
			label string
			value string
		}{label: "Detected Offset", value: strconv.Itoa(*stats.DetectedOffset)})
	}
	for _, row := range rows {
		pdf.CellFormat(50, 6, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, rep FrameReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Findings")
	pdf.Ln(9)

	if len(rep.Findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No findings recorded.", "", "L", false)
		pdf.Ln(2)
		return
	}

	for i, f := range rep.Findings {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%d. %s (%s)", i+1, f.CheckId, severityLabel(f.Severity))
		pdf.MultiCell(0, 5, header, "", "L", false)

		if msg := strings.TrimSpace(f.Message); msg != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, msg, "", "L", false)
		}
		if f.Offset != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 4, "Offset "+f.Offset, "", "L", false)
		}
		pdf.Ln(2)
	}
}

func addHashQR(pdf *gofpdf.Fpdf, hash string) {
	if strings.TrimSpace(hash) == "" {
		return
	}
	png, err := FrameHashQR(hash, 256)
	if err != nil {
		pdf.SetError(err)
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("frame-hash-qr", opts, bytes.NewReader(png))
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Frame SHA-256")
	pdf.Ln(9)
	pdf.ImageOptions("frame-hash-qr", pdf.GetX(), pdf.GetY(), 30, 30, false, opts, 0, "")
	pdf.SetXY(pdf.GetX()+34, pdf.GetY()+2)
	pdf.SetFont("Courier", "", 8)
	pdf.MultiCell(0, 4, hash, "", "L", false)
}

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func severityLabel(sev Severity) string {
	if s := strings.TrimSpace(string(sev)); s != "" {
		return s
	}
	return "UNKNOWN"
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
