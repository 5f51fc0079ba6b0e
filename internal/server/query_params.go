package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalInt64(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return strconv.ParseInt(trimmed, 10, 64)
}

func parseOptionalInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return strconv.Atoi(trimmed)
}

func parseSnowflakeID(value string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid_id")
	}
	return parsed, nil
}

func parseOptionalSnowflakeID(value string) snowflake.ID {
	id, err := parseSnowflakeID(value)
	if err != nil {
		return 0
	}
	return id
}

// parseOptionalTime reads a date filter. Unparseable values are ignored, the
// filter simply does not apply.
func parseOptionalTime(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		return &parsed
	}
	return nil
}

// parseMemberParam resolves a user reference, mapping "me" onto the caller.
func parseMemberParam(value string, callerID int64) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	if trimmed == "me" {
		return callerID, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, ErrInvalidRequest
	}
	return parsed, nil
}
