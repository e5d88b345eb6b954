// Package content holds the static storefront pages and renders their
// markdown for terminal display.
package content

import (
	"embed"
)

//go:embed pages/*.md
var pages embed.FS

// FAQ returns the frequently-asked-questions page source.
func FAQ() string {
	return mustPage("pages/faq.md")
}

// About returns the about page source.
func About() string {
	return mustPage("pages/about.md")
}

// mustPage reads an embedded page. The pages ship inside the binary,
// so a read failure is a build defect, not a runtime condition.
func mustPage(name string) string {
	data, err := pages.ReadFile(name)
	if err != nil {
		panic("embedded page missing: " + name)
	}
	return string(data)
}
