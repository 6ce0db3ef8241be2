package businessflow

import (
	"strconv"
	"strings"
)

// ParseTagIDs parses the comma separated tag id list of a dot list call.
// An empty value means no tag filtering. Any element that is not a
// positive integer fails the whole parse.
func ParseTagIDs(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, ErrInvalidTagFilter
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, ErrInvalidTagFilter
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// ParseAssignedOnly interprets the assigned_only query value. Absent or
// unrecognized values mean false; "1" and "true" (any case) mean true.
func ParseAssignedOnly(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
