package db

import "strings"

var keyPartEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// KeyPart escapes a caller-supplied key segment so it can't add ':' separators
// of its own. Values without '%' or ':' are returned unchanged.
func KeyPart(s string) string {
	return keyPartEscaper.Replace(s)
}
