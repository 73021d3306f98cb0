package utils

import (
	"fmt"
	"strings"
	"time"
)

// Number formats large numbers with commas for readability.
// For example: 1234567 becomes "1,234,567"
func Number(n int64) string {
	if n < 0 {
		return "-" + Number(-n)
	}

	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// Duration formats time duration in human-readable form.
// Examples:
//   - Less than 1 millisecond: "0ms"
//   - Less than 1 second: "12ms"
//   - Less than 1 minute: "5.2s"
//   - 1 minute or more: "3m5.2s"
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		minutes := int(d.Minutes())
		seconds := d.Seconds() - float64(minutes*60)
		return fmt.Sprintf("%dm%.1fs", minutes, seconds)
	}
}

// Bytes formats a byte count with a binary unit suffix.
// Examples: 512 -> "512B", 1536 -> "1.50KiB", 3145728 -> "3.00MiB"
func Bytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 4; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f%ciB", float64(n)/float64(div), "KMGTP"[exp])
}
