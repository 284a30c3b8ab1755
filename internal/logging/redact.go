package logging

import "strings"

// SecretKeyPatterns are substrings of attribute keys whose values are masked.
// Matching is case-insensitive.
var SecretKeyPatterns = []string{
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"KEY",
	"AUTH",
	"CREDENTIAL",
	"ACCOUNT",
}

// TokenPrefixes are value prefixes that identify credentials regardless of
// the key they are logged under.
var TokenPrefixes = []string{
	"ghp_",
	"gho_",
	"github_pat_",
	"sk-",
	"AKIA",
	"xoxb-",
	"xoxp-",
}

// MaskValue masks a potentially sensitive string value.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// ShouldMask reports whether the key name suggests sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value starts with a known credential prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
