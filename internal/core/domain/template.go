package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder is replaced by the slugified base name when a template is expanded.
const Placeholder = "$"

var (
	specPattern   = regexp.MustCompile(`^(\d+)x(\d+):([\w$./]+)$`)
	slugStrip     = regexp.MustCompile(`[^\w\s\v-]`)
	slugSeparator = regexp.MustCompile(`[-\s\v]+`)
)

// Slugify turns arbitrary text into a lowercase, hyphen-delimited ASCII string.
func Slugify(text string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))

	ascii, _, err := transform.String(fold, text)
	if err != nil {
		// the chain only drops runes, fall back to a plain filter
		ascii = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, text)
	}

	ascii = slugStrip.ReplaceAllString(ascii, "")
	ascii = strings.ToLower(strings.TrimSpace(ascii))

	return slugSeparator.ReplaceAllString(ascii, "-")
}

// ExpandTemplate replaces every placeholder in template with the slug of baseName.
func ExpandTemplate(template, baseName string) string {
	return strings.ReplaceAll(template, Placeholder, Slugify(baseName))
}

// ParseThumbnailSpec parses a WxH:template directive.
func ParseThumbnailSpec(value string) (ThumbnailSpec, error) {
	m := specPattern.FindStringSubmatch(value)
	if m == nil {
		return ThumbnailSpec{}, fmt.Errorf("%w: %q does not match WxH:template", ErrInvalidSpec, value)
	}

	width, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return ThumbnailSpec{}, fmt.Errorf("%w: width in %q: %w", ErrInvalidSpec, value, err)
	}

	height, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return ThumbnailSpec{}, fmt.Errorf("%w: height in %q: %w", ErrInvalidSpec, value, err)
	}

	template := m[3]
	if strings.HasPrefix(template, "/") {
		return ThumbnailSpec{}, fmt.Errorf("%w: template in %q must be relative", ErrInvalidSpec, value)
	}
	for _, segment := range strings.Split(template, "/") {
		if segment == ".." {
			return ThumbnailSpec{}, fmt.Errorf("%w: template in %q must not contain '..'", ErrInvalidSpec, value)
		}
	}

	return ThumbnailSpec{
		Width:    uint(width),
		Height:   uint(height),
		Template: template,
	}, nil
}
