package main

import (
	"fmt"
	"io"
)

type diffRange struct {
	From int
	To   int
}

// diffRanges returns the contiguous byte ranges, inclusive on both ends,
// where the two buffers disagree. Only the overlapping prefix is compared.
func diffRanges(a, b []byte) []diffRange {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var ranges []diffRange
	start := -1
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			ranges = append(ranges, diffRange{From: start, To: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		ranges = append(ranges, diffRange{From: start, To: n - 1})
	}
	return ranges
}

func printDiff(w io.Writer, aName, bName string, a, b []byte) {
	ranges := diffRanges(a, b)
	for _, r := range ranges {
		fmt.Fprintf(w, "Difference from byte %d to %d\n", r.From, r.To)
	}
	switch {
	case len(a) > len(b):
		fmt.Fprintf(w, "%s is longer starting at byte %d\n", aName, len(b))
	case len(b) > len(a):
		fmt.Fprintf(w, "%s is longer starting at byte %d\n", bName, len(a))
	case len(ranges) == 0:
		fmt.Fprintln(w, "Files are identical")
	}
}
