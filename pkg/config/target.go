package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTargetUserID parses the chat id that receives lead notifications.
// An empty value disables notifications and is not an error.
func ParseTargetUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid TARGET_USER_ID: %q", raw)
	}
	return parsed, nil
}
