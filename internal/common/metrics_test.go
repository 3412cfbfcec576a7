package common

import "testing"

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.Start()
	m.AddFrame(1000)
	m.AddFrame(500)
	m.AddFrame(0) // ignored
	m.AddBytes(250)
	m.IncCorrection()
	m.SetTotalBytes(2000)
	m.Stop()

	snap := m.Snapshot()
	if snap.Frames != 2 {
		t.Fatalf("Frames = %d, want 2", snap.Frames)
	}
	if snap.Bytes != 1750 {
		t.Fatalf("Bytes = %d, want 1750", snap.Bytes)
	}
	if snap.Corrections != 1 {
		t.Fatalf("Corrections = %d, want 1", snap.Corrections)
	}
	if snap.Duration <= 0 {
		t.Fatalf("Duration = %v, want > 0", snap.Duration)
	}
	if got := snap.Completion(); got != 0.875 {
		t.Fatalf("Completion() = %v, want 0.875", got)
	}
}

func TestMetricsCompletionClamps(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		total int64
		want  float64
	}{
		{name: "no total", bytes: 100, total: 0, want: 0},
		{name: "over total", bytes: 300, total: 200, want: 1},
		{name: "half", bytes: 100, total: 200, want: 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := MetricsSnapshot{Bytes: tc.bytes, TotalBytes: tc.total}
			if got := snap.Completion(); got != tc.want {
				t.Fatalf("Completion() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "bytes", in: 512, want: "512 B"},
		{name: "kibibytes", in: 2048, want: "2.00 KiB"},
		{name: "mebibytes", in: 5 * 1024 * 1024, want: "5.00 MiB"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatBytes(tc.in); got != tc.want {
				t.Fatalf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
