package scan

import "strings"

// Category classifies the decoded text of a scanned code. The value is the
// tag used in persisted records, so renaming a constant is a data migration.
type Category string

const (
	CategoryURL     Category = "url"
	CategoryText    Category = "text"
	CategoryEmail   Category = "email"
	CategoryPhone   Category = "phone"
	CategoryWiFi    Category = "wifi"
	CategoryUnknown Category = "unknown"
)

// Categories returns every valid category tag.
func Categories() []Category {
	return []Category{
		CategoryURL,
		CategoryText,
		CategoryEmail,
		CategoryPhone,
		CategoryWiFi,
		CategoryUnknown,
	}
}

// ParseCategory maps a stored tag back to its Category. Unrecognized tags
// map to CategoryUnknown so that persisted data written by a newer (or
// foreign) version still loads. Classify never produces CategoryUnknown;
// this is its only producer.
func ParseCategory(tag string) Category {
	switch c := Category(tag); c {
	case CategoryURL, CategoryText, CategoryEmail, CategoryPhone, CategoryWiFi, CategoryUnknown:
		return c
	default:
		return CategoryUnknown
	}
}

// Classify assigns a category to raw decoded text. Rules apply in order and
// the first match wins. Prefix checks are case-sensitive ("HTTP://x" is
// text, not url) and nothing is trimmed; both must stay that way for
// compatibility with previously classified records. The empty string falls
// through to CategoryText.
func Classify(content string) Category {
	switch {
	case strings.HasPrefix(content, "http://"), strings.HasPrefix(content, "https://"):
		return CategoryURL
	case strings.HasPrefix(content, "mailto:"):
		return CategoryEmail
	case strings.HasPrefix(content, "tel:"), strings.HasPrefix(content, "phone:"):
		return CategoryPhone
	case strings.HasPrefix(content, "WIFI:"):
		return CategoryWiFi
	case strings.Contains(content, "@") && strings.Contains(content, "."):
		return CategoryEmail
	default:
		return CategoryText
	}
}
