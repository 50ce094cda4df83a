// Package display maps scan categories to presentation metadata. The
// mapping lives outside the core store so front ends can restyle without
// touching classification or persistence.
package display

import "qrscan-go/internal/scan"

// Info is the presentation metadata for one category.
type Info struct {
	Label string // human-readable name
	Icon  string // icon identifier for front ends
}

var infos = map[scan.Category]Info{
	scan.CategoryURL:     {Label: "URL", Icon: "link"},
	scan.CategoryText:    {Label: "Text", Icon: "text"},
	scan.CategoryEmail:   {Label: "Email", Icon: "mail"},
	scan.CategoryPhone:   {Label: "Phone", Icon: "phone"},
	scan.CategoryWiFi:    {Label: "Wi-Fi", Icon: "wifi"},
	scan.CategoryUnknown: {Label: "Unknown", Icon: "question"},
}

// ForCategory returns the presentation metadata for cat. Unrecognized
// values get the Unknown entry.
func ForCategory(cat scan.Category) Info {
	if info, ok := infos[cat]; ok {
		return info
	}
	return infos[scan.CategoryUnknown]
}
