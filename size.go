package main

import "fmt"

const (
	sizeKB = int64(1024)
	sizeMB = sizeKB * 1024
	sizeGB = sizeMB * 1024
	sizeTB = sizeGB * 1024
)

// formatSize renders a byte count for report cells. Unit thresholds are
// strictly greater-than, so 1024 stays "1024 bytes" and only 1025+ becomes KB.
func formatSize(n int64) string {
	switch {
	case n > sizeTB:
		return fmt.Sprintf("%.2f TB", float64(n)/float64(sizeTB))
	case n > sizeGB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(sizeGB))
	case n > sizeMB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(sizeMB))
	case n > sizeKB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(sizeKB))
	case n == 1:
		return "1 byte"
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
