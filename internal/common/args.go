package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseIID accepts a merge request or issue number with or without its
// "!" or "#" prefix
func ParseIID(s string) (int, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(s), "!#")
	iid, err := strconv.Atoi(trimmed)
	if err != nil || iid <= 0 {
		return 0, fmt.Errorf("invalid number %q: expected a positive integer like 42 or !42", s)
	}
	return iid, nil
}

// ParseTimeFlag parses a date flag given as 2006-01-02 or RFC 3339.
// An empty value returns nil.
func ParseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD or RFC 3339", name, value)
}
