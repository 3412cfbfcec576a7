package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestDiffRanges(t *testing.T) {
	tests := []struct {
		name string
		a    []byte
		b    []byte
		want []diffRange
	}{
		{
			name: "identical",
			a:    []byte{1, 2, 3},
			b:    []byte{1, 2, 3},
			want: nil,
		},
		{
			name: "single range",
			a:    []byte{1, 2, 3, 4, 5},
			b:    []byte{1, 9, 9, 4, 5},
			want: []diffRange{{From: 1, To: 2}},
		},
		{
			name: "two ranges",
			a:    []byte{0, 0, 0, 0, 0, 0},
			b:    []byte{1, 0, 0, 2, 2, 0},
			want: []diffRange{{From: 0, To: 0}, {From: 3, To: 4}},
		},
		{
			name: "difference runs to end",
			a:    []byte{1, 2, 3},
			b:    []byte{1, 8, 8},
			want: []diffRange{{From: 1, To: 2}},
		},
		{
			name: "only overlap compared",
			a:    []byte{1, 2},
			b:    []byte{1, 2, 3, 4},
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := diffRanges(tc.a, tc.b)
			if len(got) != len(tc.want) {
				t.Fatalf("diffRanges() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("range %d = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestPrintDiff(t *testing.T) {
	tests := []struct {
		name string
		a    []byte
		b    []byte
		want []string
	}{
		{
			name: "ranges reported",
			a:    []byte{0, 1, 2, 3},
			b:    []byte{0, 9, 9, 3},
			want: []string{"Difference from byte 1 to 2"},
		},
		{
			name: "identical",
			a:    []byte{1, 2},
			b:    []byte{1, 2},
			want: []string{"Files are identical"},
		},
		{
			name: "second file longer",
			a:    []byte{1, 2},
			b:    []byte{1, 2, 3},
			want: []string{"b.bin is longer starting at byte 2"},
		},
		{
			name: "first file longer with differences",
			a:    []byte{1, 9, 3, 4},
			b:    []byte{1, 2, 3},
			want: []string{
				"Difference from byte 1 to 1",
				"a.bin is longer starting at byte 3",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			printDiff(&out, "a.bin", "b.bin", tc.a, tc.b)
			got := strings.TrimRight(out.String(), "\n")
			want := strings.Join(tc.want, "\n")
			if got != want {
				t.Fatalf("printDiff() output = %q, want %q", got, want)
			}
		})
	}
}
