package media

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
)

const maxExtLen = 10

// NewName returns image-<unix millis>-<random><ext> for an uploaded file.
func NewName(original string) string {
	return GenerateName(original, time.Now(), rand.Int64N(1_000_000_000))
}

func GenerateName(original string, now time.Time, suffix int64) string {
	return fmt.Sprintf("image-%d-%d%s", now.UnixMilli(), suffix, Ext(original))
}

// Ext returns the lower-cased extension of the client filename, or "" when it is
// missing or contains anything but ASCII letters and digits.
func Ext(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(original, `\`, "/"))))
	if len(ext) < 2 || len(ext) > maxExtLen+1 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
