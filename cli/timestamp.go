package cli

import "time"

// formatTimestamp renders a local wall-clock time for listings. Zero
// times render as a dash so columns stay aligned.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format("2006-01-02 15:04:05")
}
