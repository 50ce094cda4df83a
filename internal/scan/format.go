package scan

import "strings"

// ForGeneration prepares text for QR generation under the chosen category:
// url gains an https:// prefix, email a mailto: prefix and phone a tel:
// prefix, each only when no equivalent prefix is already present. Any other
// category returns the text unchanged. The function is pure and idempotent;
// it applies at generation time only and never touches stored history
// content.
func ForGeneration(text string, cat Category) string {
	switch cat {
	case CategoryURL:
		if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
			return "https://" + text
		}
	case CategoryEmail:
		if !strings.HasPrefix(text, "mailto:") {
			return "mailto:" + text
		}
	case CategoryPhone:
		if !strings.HasPrefix(text, "tel:") {
			return "tel:" + text
		}
	}
	return text
}
