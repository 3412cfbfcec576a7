package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"example.com/bayerfix/internal/bayer"
	"example.com/bayerfix/internal/common"
	"example.com/bayerfix/internal/frame"
	"example.com/bayerfix/internal/imageio"
	"example.com/bayerfix/internal/manifest"
	"example.com/bayerfix/internal/repair"
	"example.com/bayerfix/internal/report"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "decode":
		decodeCmd(os.Args[2:])
	case "inspect":
		inspectCmd(os.Args[2:])
	case "detect":
		detectCmd(os.Args[2:])
	case "fix":
		fixCmd(os.Args[2:])
	case "shift":
		shiftCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "manifest":
		manifestCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	default:
		usage()
	}
}

const usageFormat = `bayerctl %s (built %s) <command> [options]

Commands:
  decode    --in <frame.bin> [--geometry <geo.yaml>] [--out-dir <dir>] [--mode normal|colorize|both|none] [--compression 0..9] [--meta <metadata.txt>]
  inspect   --in <frame.bin> [--geometry <geo.yaml>] [--scores] [--out <report.json>] [--pdf <report.pdf>]
  detect    --in <frame.bin> [--geometry <geo.yaml>] [--scores-out <scores.ndjson>] [--overlay <overlay.png>]
  fix       --in <frame.bin> [--out <fixed.bin>] [--geometry <geo.yaml>] [--audit <repairs.jsonl>] [--dry-run]
  shift     --in <frame.bin> --count <n> [--start-row <r>] [--start-col <c>] [--geometry <geo.yaml>] [--out <copy.bin>] [--audit <repairs.jsonl>]
  diff      --a <file> --b <file>
  report    --in <report.json> --pdf <report.pdf>
  manifest  --inputs <comma-separated> --out <manifest.json>
  batch     --in <dir> [--series <prefix>] [--geometry <geo.yaml>] --out-dir <dir> [--mode normal|colorize|both|none] [--fix] [--metrics] [--progress]
`

func usage() {
	fmt.Printf(usageFormat, version, buildDate)
}

func loadGeometryFlag(path string) frame.Geometry {
	if strings.TrimSpace(path) == "" {
		return frame.DefaultGeometry()
	}
	geo, err := frame.LoadGeometry(path)
	if err != nil {
		fmt.Println("load geometry:", err)
		os.Exit(1)
	}
	return geo
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "input raw frame")
	geoPath := fs.String("geometry", "", "geometry profile yaml")
	outDir := fs.String("out-dir", ".", "output directory")
	mode := fs.String("mode", "normal", "image output: normal|colorize|both|none")
	compression := fs.Int("compression", 3, "PNG compression level 0..9")
	metaPath := fs.String("meta", "", "metadata record file (appended)")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	geo := loadGeometryFlag(*geoPath)
	f, err := frame.Load(*in, geo)
	if err != nil {
		fmt.Println("load frame:", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Println("out dir:", err)
		os.Exit(1)
	}
	outputs, err := decodeFrame(f, *in, *outDir, *mode, *compression, *metaPath)
	if err != nil {
		fmt.Println("decode:", err)
		os.Exit(1)
	}
	for _, out := range outputs {
		fmt.Println("Wrote", out)
	}
}

// decodeFrame writes the image and metadata outputs for one frame and returns
// the paths it produced.
func decodeFrame(f *frame.RawFrame, inPath, outDir, mode string, compression int, metaPath string) ([]string, error) {
	geo := f.Geometry()
	base := filepath.Base(inPath)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	var outputs []string

	grayscale := mode == "normal" || mode == "both"
	colorize := mode == "colorize" || mode == "both"
	if !grayscale && !colorize && mode != "none" {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	pix := f.PixelRegion()
	if grayscale {
		out := filepath.Join(outDir, base+".png")
		if err := imageio.WriteGrayPNG(out, pix, geo.Width, geo.PixelRows(), compression); err != nil {
			return nil, fmt.Errorf("write grayscale: %w", err)
		}
		outputs = append(outputs, out)
	}
	if colorize {
		rgb, err := bayer.ToRGB(pix, geo.Width, geo.PixelRows())
		if err != nil {
			return nil, fmt.Errorf("demosaic: %w", err)
		}
		out := filepath.Join(outDir, base+"_color.png")
		if err := imageio.WriteRGBPNG(out, rgb, geo.Width, geo.PixelRows(), compression); err != nil {
			return nil, fmt.Errorf("write color: %w", err)
		}
		outputs = append(outputs, out)
	}

	md, err := frame.ExtractMetadata(f)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	md.FileID = frame.FileID(inPath)
	record := metaPath
	if record == "" {
		record = filepath.Join(outDir, base+"_metadata.txt")
	}
	if err := appendMetadata(record, md); err != nil {
		return nil, fmt.Errorf("metadata record: %w", err)
	}
	outputs = append(outputs, record)
	return outputs, nil
}

func appendMetadata(path string, md frame.Metadata) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(md.Text() + "\n"); err != nil {
		return err
	}
	return f.Sync()
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", "", "input raw frame")
	geoPath := fs.String("geometry", "", "geometry profile yaml")
	withScores := fs.Bool("scores", false, "include patch score statistics")
	out := fs.String("out", "", "report JSON output")
	pdfOut := fs.String("pdf", "", "report PDF output")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	geo := loadGeometryFlag(*geoPath)
	f, err := frame.Load(*in, geo)
	if err != nil {
		fmt.Println("load frame:", err)
		os.Exit(1)
	}
	rep, err := report.Inspect(f, *in, *withScores)
	if err != nil {
		fmt.Println("inspect:", err)
		os.Exit(1)
	}
	if *out != "" {
		if err := report.SaveFrameReportJSON(rep, *out); err != nil {
			fmt.Println("write report:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *out)
	}
	if *pdfOut != "" {
		if err := report.SaveFramePDF(rep, *pdfOut); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *pdfOut)
	}
	if md := rep.Metadata; md != nil {
		fmt.Printf("Analog gain: 0x%02X, integration time: %.3f ms\n", md.AnalogGain, md.IntegrationTimeMs)
	}
	fmt.Printf("PASS=%v, errors=%d, warnings=%d, findings=%d\n",
		rep.Summary.Pass, rep.Summary.Errors, rep.Summary.Warnings, len(rep.Findings))
}

func detectCmd(args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	in := fs.String("in", "", "input raw frame")
	geoPath := fs.String("geometry", "", "geometry profile yaml")
	scoresOut := fs.String("scores-out", "", "patch scores output (ndjson)")
	overlayOut := fs.String("overlay", "", "detection overlay PNG output")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	geo := loadGeometryFlag(*geoPath)
	f, err := frame.Load(*in, geo)
	if err != nil {
		fmt.Println("load frame:", err)
		os.Exit(1)
	}
	pix := f.PixelRegion()
	scores, err := repair.ScorePatches(pix, geo.Width, geo.PixelRows(), geo.PatchSize)
	if err != nil {
		fmt.Println("score:", err)
		os.Exit(1)
	}
	if *scoresOut != "" {
		if err := writeScoresNDJSON(*scoresOut, scores); err != nil {
			fmt.Println("write scores:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *scoresOut)
	}
	event, err := repair.DetectShift(scores)
	if err != nil {
		fmt.Println("detect:", err)
		os.Exit(1)
	}
	row := event.DetectedOffset / geo.Width
	col := event.DetectedOffset % geo.Width
	fmt.Printf("Likely missing byte at global index %d, row=%d, col=%d\n", event.DetectedOffset, row, col)
	if *overlayOut != "" {
		img, err := imageio.RenderDetectionOverlay(pix, geo.Width, geo.PixelRows(), row, col)
		if err != nil {
			fmt.Println("overlay:", err)
			os.Exit(1)
		}
		if err := imageio.WritePNG(*overlayOut, img, 3); err != nil {
			fmt.Println("write overlay:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *overlayOut)
	}
}

func writeScoresNDJSON(path string, scores []repair.PatchScore) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, s := range scores {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return f.Sync()
}

func fixCmd(args []string) {
	fs := flag.NewFlagSet("fix", flag.ExitOnError)
	in := fs.String("in", "", "input raw frame")
	out := fs.String("out", "", "corrected output file")
	geoPath := fs.String("geometry", "", "geometry profile yaml")
	auditPath := fs.String("audit", "", "repair log output (jsonl)")
	dryRun := fs.Bool("dry-run", false, "detect only, write nothing")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	if *out == "" {
		*out = *in + ".fixed.bin"
	}
	geo := loadGeometryFlag(*geoPath)
	f, err := frame.Load(*in, geo)
	if err != nil {
		fmt.Println("load frame:", err)
		os.Exit(1)
	}
	scores, err := repair.ScorePatches(f.PixelRegion(), geo.Width, geo.PixelRows(), geo.PatchSize)
	if err != nil {
		fmt.Println("score:", err)
		os.Exit(1)
	}
	event, err := repair.DetectShift(scores)
	if err != nil {
		fmt.Println("detect:", err)
		os.Exit(1)
	}
	// The detected offset is relative to the pixel region; the header row
	// precedes it in the frame buffer.
	frameOffset := event.DetectedOffset + geo.Width
	fmt.Printf("Likely missing byte at global index %d (frame offset %d)\n", event.DetectedOffset, frameOffset)
	if *dryRun {
		return
	}

	fixed, err := repair.CorrectShift(f.Bytes(), frameOffset)
	if err != nil {
		fmt.Println("correct:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, fixed, 0644); err != nil {
		fmt.Println("write output:", err)
		os.Exit(1)
	}
	beforeSha := common.Sha256OfBytes(f.Bytes())
	afterSha := common.Sha256OfBytes(fixed)

	auditLogPath := *auditPath
	if auditLogPath == "" {
		auditLogPath = *out + ".repairs.jsonl"
	}
	repairLog := common.NewRepairLog(auditLogPath)
	if err := repairLog.Append(common.RepairEntry{
		Op:           "fix",
		File:         *in,
		Offset:       int64(frameOffset),
		BeforeSha256: beforeSha,
		AfterSha256:  afterSha,
	}); err != nil {
		fmt.Println("repair log:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *out)
	fmt.Printf("Input SHA256:  %s\n", beforeSha)
	fmt.Printf("Output SHA256: %s\n", afterSha)
	fmt.Println("Repair log:", repairLog.Path())
}

func shiftCmd(args []string) {
	fs := flag.NewFlagSet("shift", flag.ExitOnError)
	in := fs.String("in", "", "input raw frame")
	out := fs.String("out", "", "shift a copy instead of the input in place")
	geoPath := fs.String("geometry", "", "geometry profile yaml")
	count := fs.Int("count", 0, "bytes to shift right")
	startRow := fs.Int("start-row", 0, "region start row")
	startCol := fs.Int("start-col", 0, "region start column")
	auditPath := fs.String("audit", "", "repair log output (jsonl)")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	geo := loadGeometryFlag(*geoPath)

	target := *in
	if *out != "" {
		if err := common.CopyFile(*in, *out); err != nil {
			fmt.Println("copy input:", err)
			os.Exit(1)
		}
		target = *out
	}
	beforeSha, _, err := common.Sha256OfFile(target)
	if err != nil {
		fmt.Println("hash input:", err)
		os.Exit(1)
	}
	if err := repair.ShiftFileRegion(target, geo.Width, geo.Height, *count, *startRow, *startCol); err != nil {
		if errors.Is(err, repair.ErrSizeMismatch) {
			fmt.Printf("shift: %v (expected %d bytes)\n", err, geo.FrameSize())
		} else {
			fmt.Println("shift:", err)
		}
		os.Exit(1)
	}
	afterSha, _, err := common.Sha256OfFile(target)
	if err != nil {
		fmt.Println("hash output:", err)
		os.Exit(1)
	}
	if *auditPath != "" {
		repairLog := common.NewRepairLog(*auditPath)
		if err := repairLog.Append(common.RepairEntry{
			Op:           "shift",
			File:         target,
			Offset:       int64(*startRow*geo.Width + *startCol),
			ShiftCount:   *count,
			BeforeSha256: beforeSha,
			AfterSha256:  afterSha,
		}); err != nil {
			fmt.Println("repair log:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Shifted %s right by %d byte(s) from row=%d col=%d\n", target, *count, *startRow, *startCol)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	a := fs.String("a", "", "first file")
	b := fs.String("b", "", "second file")
	fs.Parse(args)

	// The two files may also be given as positional arguments.
	rest := fs.Args()
	if *a == "" && len(rest) > 0 {
		*a = rest[0]
		rest = rest[1:]
	}
	if *b == "" && len(rest) > 0 {
		*b = rest[0]
	}
	if *a == "" || *b == "" {
		fmt.Println("required: --a, --b")
		os.Exit(1)
	}
	aBytes, err := os.ReadFile(*a)
	if err != nil {
		fmt.Println("read a:", err)
		os.Exit(1)
	}
	bBytes, err := os.ReadFile(*b)
	if err != nil {
		fmt.Println("read b:", err)
		os.Exit(1)
	}
	printDiff(os.Stdout, *a, *b, aBytes, bBytes)
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "frame report JSON")
	pdfPath := fs.String("pdf", "", "output report PDF")
	fs.Parse(args)

	if *in == "" || *pdfPath == "" {
		fmt.Println("required: --in, --pdf")
		os.Exit(1)
	}
	rep, err := report.LoadFrameReportJSON(*in)
	if err != nil {
		fmt.Println("load report:", err)
		os.Exit(1)
	}
	if err := report.SaveFramePDF(rep, *pdfPath); err != nil {
		fmt.Println("write pdf:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote PDF:", *pdfPath)
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	inputs := fs.String("inputs", "", "comma-separated paths")
	out := fs.String("out", "manifest.json", "output json")
	fs.Parse(args)

	if *inputs == "" {
		fmt.Println("required: --inputs")
		os.Exit(1)
	}
	var paths []string
	for _, p := range strings.Split(*inputs, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		fmt.Println("no input paths specified")
		os.Exit(1)
	}
	m, err := manifest.Build(paths)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}
	if err := manifest.Save(m, *out); err != nil {
		fmt.Println("manifest save:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *out)
}
