package weather

import (
	"fmt"
	"strings"
	"time"
)

const (
	// LocalOffset is the fixed UTC offset of the reporting zone (+05:30).
	LocalOffset = 19800 * time.Second
	// LocalSuffix is appended to every rendered timestamp.
	LocalSuffix = "IST"

	localLayout = "2006-01-02 15:04:05"
)

// FormatLocal renders a Unix epoch as "YYYY-MM-DD HH:MM:SS IST" in the fixed +05:30 zone.
func FormatLocal(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Add(LocalOffset).Format(localLayout) + " " + LocalSuffix
}

// ParseLocal is the inverse of FormatLocal.
func ParseLocal(s string) (int64, error) {
	raw, ok := strings.CutSuffix(s, " "+LocalSuffix)
	if !ok {
		return 0, fmt.Errorf("timestamp %q does not end in %q", s, LocalSuffix)
	}
	t, err := time.Parse(localLayout, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.Add(-LocalOffset).Unix(), nil
}
