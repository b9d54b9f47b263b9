package media

import (
	"math"
	"strconv"
	"strings"
)

// sizeUnits orders the byte-limit unit suffixes; the position of a unit
// is the power of 1024 its value is multiplied by.
const sizeUnits = "bkmgtpezy"

// ParseSize converts a byte-limit expression like "10M" or "512k" into
// bytes. The unit is the first recognized suffix letter, matched
// case-insensitively; without one, the numeric value is taken as bytes.
func ParseSize(size string) int64 {
	var digits strings.Builder
	unitIndex := -1

	for _, r := range strings.ToLower(size) {
		if (r >= '0' && r <= '9') || r == '.' {
			digits.WriteRune(r)
			continue
		}
		if unitIndex < 0 {
			unitIndex = strings.IndexRune(sizeUnits, r)
		}
	}

	value, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0
	}

	if unitIndex >= 0 {
		value *= math.Pow(1024, float64(unitIndex))
	}

	return int64(math.Round(value))
}

// MaxUploadSize returns the effective upload limit in bytes: the post
// limit, reduced to the upload limit when that is smaller. A zero upload
// limit means no limit of its own.
func (s *Service) MaxUploadSize() int64 {
	maxSize := ParseSize(s.cfg.Media.PostMaxSize)

	uploadMax := ParseSize(s.cfg.Media.UploadMaxSize)
	if uploadMax > 0 && uploadMax < maxSize {
		maxSize = uploadMax
	}

	return maxSize
}
