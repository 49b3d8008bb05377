package emit

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TypeName derives a Swift type name from a document identity:
// "settings/profile" becomes "SettingsProfile", "login_screen" becomes
// "LoginScreen".
func TypeName(doc string) string {
	parts := strings.FieldsFunc(doc, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// Casers carry state and must not be shared across goroutines.
	titler := cases.Title(language.Und, cases.NoLower)
	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString(titler.String(part))
	}
	name := sb.String()
	if name == "" {
		return "Layout"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "Layout" + name
	}
	return name
}

// GroupName is the manifest group for doc: the prefix joined with the
// document's directory.
func GroupName(prefix, doc string) string {
	dir := path.Dir(doc)
	if dir == "." {
		return prefix
	}
	if prefix == "" {
		return dir
	}
	return prefix + "/" + dir
}
