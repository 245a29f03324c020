package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FmtCoords renders a latitude/longitude pair with hemisphere letters, e.g.
// "27.2889° N, 88.5617° E". Missing values render as "".
func FmtCoords(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return ""
	}
	ns, ew := "N", "E"
	if *lat < 0 {
		ns = "S"
	}
	if *lng < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.4f° %s, %.4f° %s", math.Abs(*lat), ns, math.Abs(*lng), ew)
}

// FmtCount formats n with thousands separators.
func FmtCount(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ne":
		return t.Format("2006-01-02")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// OrNA returns s, or "N/A" when s is blank.
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
