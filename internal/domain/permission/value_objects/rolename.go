package value_objects

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalRoleName normalizes free text to the form role names are looked up by.
// The input is trimmed, lower-cased and spaces become underscores; each
// underscore-delimited word is then capitalized and rendered with a space.
//
//	"  Content Editor "  -> "Content Editor"
//	"content_editor"     -> "Content Editor"
//	"ADMIN"              -> "Admin"
func CanonicalRoleName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "_", " ")
	// Casers are stateful; build one per call.
	return cases.Title(language.Und).String(s)
}
