package thumbnail

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// SizeSpec is one configured derivative size. Literal keeps the exact
// configured "WxH" string; derivative paths embed it verbatim, so the
// generator and the URL resolver agree byte-for-byte.
type SizeSpec struct {
	Name    string
	Width   int
	Height  int
	Literal string
}

// ParseSizes builds the size spec list from the configured name → "WxH"
// map, sorted by name so generation order is deterministic. Malformed
// entries are dropped.
func ParseSizes(sizes map[string]string) []SizeSpec {
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	var specs []SizeSpec
	for _, name := range names {
		width, height, err := parseSpec(sizes[name])
		if err != nil {
			continue
		}
		specs = append(specs, SizeSpec{
			Name:    name,
			Width:   width,
			Height:  height,
			Literal: sizes[name],
		})
	}

	return specs
}

func parseSpec(value string) (int, int, error) {
	parts := strings.SplitN(value, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed size spec %q", value)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed size spec %q: %w", value, err)
	}

	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed size spec %q: %w", value, err)
	}

	return width, height, nil
}

// DerivativePath maps a stored file path to its derivative sibling for
// the given size literal: a/b.jpg + 100x100 -> a/b-100x100.jpg.
func DerivativePath(url, size string) string {
	ext := path.Ext(url)
	name := strings.TrimSuffix(path.Base(url), ext)
	dir := path.Dir(url)

	derived := name + "-" + size + ext
	if dir != "." && dir != "" {
		derived = dir + "/" + derived
	}

	return derived
}
