package validation

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLen   = 256
	MaxTextLen    = 50000
	MaxCommentLen = 10000
)

// ValidateTitle checks a post title for presence and length.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	return nil
}

// ValidatePostText checks a post body for presence and length.
func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if len(text) > MaxTextLen {
		return fmt.Errorf("text must not exceed %d characters", MaxTextLen)
	}
	return nil
}

// ValidateCommentText checks a comment body. Whitespace-only comments are
// rejected; surrounding whitespace itself is preserved by the caller.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("comment text is required")
	}
	if len(text) > MaxCommentLen {
		return fmt.Errorf("comment must not exceed %d characters", MaxCommentLen)
	}
	return nil
}

// pubDateLayouts are the accepted publication date formats: RFC 3339 and the
// HTML datetime-local format, with and without seconds.
var pubDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParsePubDate parses a scheduled publication date. Future dates are valid;
// they delay visibility rather than being an error.
func ParsePubDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("pub_date is required")
	}
	for _, layout := range pubDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("pub_date %q is not a valid timestamp", raw)
}
