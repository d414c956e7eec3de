package capture

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/vbonduro/fieldinspect/internal/domain"
)

const maxComponentRunes = 30

// maxNameBytes is the common filesystem limit for one path element.
const maxNameBytes = 255

// SanitizeComponent keeps letters and digits, replaces every other rune with
// '_' and truncates to 30 runes.
func SanitizeComponent(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if n == maxComponentRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
		n++
	}
	return b.String()
}

// AddressSlug joins the sanitized, non-empty address components.
func AddressSlug(settlement, street, house, apartment, room string) string {
	var parts []string
	for _, c := range []string{settlement, street, house, apartment, room} {
		if s := SanitizeComponent(c); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "без_адреса"
	}
	return strings.Join(parts, "_")
}

// PhotoName builds <address>_<tag>_<ddMMyyyy>_<HHmmss>_<NN>.jpg with a
// 1-based index. The address is shortened on a rune boundary so the whole
// name fits in 255 bytes.
func PhotoName(address string, access domain.Access, at time.Time, index int) string {
	suffix := fmt.Sprintf("_%s_%s_%s_%02d.jpg",
		access.PhotoTag(),
		at.Format("02012006"),
		at.Format("150405"),
		index,
	)
	return truncateBytes(address, maxNameBytes-len(suffix)) + suffix
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i, r := range s {
		if i+utf8.RuneLen(r) > limit {
			break
		}
		n = i + utf8.RuneLen(r)
	}
	return s[:n]
}

// SidecarName replaces the photo's extension with .txt.
func SidecarName(photoName string) string {
	return strings.TrimSuffix(photoName, ".jpg") + ".txt"
}

// SidecarFormat selects the geotag sidecar layout.
type SidecarFormat string

const (
	SidecarDetailed SidecarFormat = "detailed"
	SidecarCompact  SidecarFormat = "compact"
)

// FormatSidecar renders loc in the chosen layout. The detailed layout omits
// the accuracy line when the provider gave none.
func FormatSidecar(format SidecarFormat, loc domain.Location) string {
	lat := formatCoord(loc.Latitude)
	lon := formatCoord(loc.Longitude)
	if format == SidecarCompact {
		return fmt.Sprintf("lat=%s,lon=%s", lat, lon)
	}
	s := fmt.Sprintf("Широта: %s\nДолгота: %s", lat, lon)
	if loc.Accuracy != nil {
		s += fmt.Sprintf("\nТочность: %sm", formatCoord(*loc.Accuracy))
	}
	return s
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
