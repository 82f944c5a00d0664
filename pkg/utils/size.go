package utils

import (
	"fmt"
	"math"
	"strconv"
)

// HumanizeBytes formats a byte count into a readable string.
func HumanizeBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)
	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// HumanizeBytesCompact formats a byte count to compact units without space, e.g., 1536 -> "1.50K", 2.25 GB -> "2.25G".
func HumanizeBytesCompact(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)
	switch {
	case b >= TB:
		return fmt.Sprintf("%.2fT", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2fG", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2fM", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2fK", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// fileSizeUnits is the unit chart used by HumanizeFileSize. Nothing above gb is produced.
var fileSizeUnits = []string{"b", "kb", "mb", "gb"}

// HumanizeFileSize formats a byte count the way the upload control labels a
// selected file: lower-case units, at most two decimals, no trailing zeros.
// 1536 -> "1.5 kb", 1048576 -> "1 mb", 0 -> "0 b".
func HumanizeFileSize(b int64) string {
	// floor(log1024(b)) clamped to the chart; integer steps keep exact powers
	// of 1024 from landing one unit low.
	idx := 0
	for idx < len(fileSizeUnits)-1 && b >= int64(1)<<(10*(idx+1)) {
		idx++
	}
	v := float64(b) / math.Pow(1024, float64(idx))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + fileSizeUnits[idx]
}
