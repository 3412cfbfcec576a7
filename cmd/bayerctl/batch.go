package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"example.com/bayerfix/internal/common"
	"example.com/bayerfix/internal/frame"
	"example.com/bayerfix/internal/manifest"
	"example.com/bayerfix/internal/repair"
)

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inDir := fs.String("in", ".", "input directory")
	series := fs.String("series", "", "series prefix; only <prefix>_*.bin files are processed")
	geoPath := fs.String("geometry", "", "geometry profile yaml")
	outDir := fs.String("out-dir", "out", "results directory")
	mode := fs.String("mode", "normal", "image output: normal|colorize|both|none")
	compression := fs.Int("compression", 3, "PNG compression level 0..9")
	fix := fs.Bool("fix", false, "detect and correct a shift in each frame")
	metricsFlag := fs.Bool("metrics", false, "print processing throughput metrics")
	progressFlag := fs.Bool("progress", false, "display processing progress updates")
	fs.Parse(args)

	geo := loadGeometryFlag(*geoPath)
	paths, err := collectFrames(*inDir, *series)
	if err != nil {
		fmt.Println("collect inputs:", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Println("no frames found in", *inDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Println("out dir:", err)
		os.Exit(1)
	}

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
		var total int64
		for _, p := range paths {
			if info, err := os.Stat(p); err == nil {
				total += info.Size()
			}
		}
		metrics.SetTotalBytes(total)
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}

	metaPath := filepath.Join(*outDir, "metadata.txt")
	repairLog := common.NewRepairLog(filepath.Join(*outDir, "repairs.jsonl"))
	outputs := []string{metaPath}
	failures := 0
	for i, path := range paths {
		fmt.Printf("Processing image %d of %d\n", i+1, len(paths))
		produced, err := processBatchFrame(path, *outDir, geo, *mode, *compression, metaPath, *fix, repairLog, metrics)
		if err != nil {
			common.Logf("skip %s: %v", path, err)
			failures++
			continue
		}
		outputs = append(outputs, produced...)
	}
	if *fix {
		outputs = append(outputs, repairLog.Path())
	}

	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}

	m, err := manifest.Build(outputs)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}
	manifestPath := filepath.Join(*outDir, "manifest.json")
	if err := manifest.Save(m, manifestPath); err != nil {
		fmt.Println("manifest save:", err)
		os.Exit(1)
	}
	fmt.Printf("Processed %d frame(s), %d failure(s)\n", len(paths)-failures, failures)
	fmt.Println("Wrote", manifestPath)
	if metrics != nil && *metricsFlag {
		snap := metrics.Snapshot()
		mbPerSec := snap.ThroughputBytesPerSecond() / 1_000_000
		fmt.Printf("Metrics: duration=%s frames=%d corrections=%d processed=%s throughput=%.2f MB/s\n",
			snap.Duration.Round(10*time.Millisecond),
			snap.Frames,
			snap.Corrections,
			common.FormatBytes(snap.Bytes),
			mbPerSec,
		)
	}
}

// collectFrames lists the .bin frames of a directory, restricted to one
// series when a prefix is given, in lexical order.
func collectFrames(dir, series string) ([]string, error) {
	pattern := "*.bin"
	if series != "" {
		pattern = series + "_*.bin"
	}
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func processBatchFrame(path, outDir string, geo frame.Geometry, mode string, compression int, metaPath string, fix bool, repairLog *common.RepairLog, metrics *common.Metrics) ([]string, error) {
	f, err := frame.Load(path, geo)
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		metrics.AddFrame(f.SourceSize())
	}
	outputs, err := decodeFrame(f, path, outDir, mode, compression, metaPath)
	if err != nil {
		return nil, err
	}
	// The shared metadata record is accounted for once by the caller.
	if len(outputs) > 0 && outputs[len(outputs)-1] == metaPath {
		outputs = outputs[:len(outputs)-1]
	}
	if !fix {
		return outputs, nil
	}

	scores, err := repair.ScorePatches(f.PixelRegion(), geo.Width, geo.PixelRows(), geo.PatchSize)
	if err != nil {
		return outputs, err
	}
	event, err := repair.DetectShift(scores)
	if err != nil {
		return outputs, err
	}
	frameOffset := event.DetectedOffset + geo.Width
	fixed, err := repair.CorrectShift(f.Bytes(), frameOffset)
	if err != nil {
		return outputs, err
	}
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	outPath := filepath.Join(outDir, base+"_fixed.bin")
	if err := os.WriteFile(outPath, fixed, 0644); err != nil {
		return outputs, err
	}
	if err := repairLog.Append(common.RepairEntry{
		Op:           "fix",
		File:         path,
		Offset:       int64(frameOffset),
		BeforeSha256: common.Sha256OfBytes(f.Bytes()),
		AfterSha256:  common.Sha256OfBytes(fixed),
	}); err != nil {
		return outputs, err
	}
	if metrics != nil {
		metrics.IncCorrection()
	}
	return append(outputs, outPath), nil
}
