package xpath

import (
	"path/filepath"
	"strings"
)

// Segment reports whether s can be used as a single path element.
func Segment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`+"\x00")
}

// Base returns the last element of a client supplied filename, whatever separator it uses.
func Base(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.ReplaceAll(name, "\x00", "")
	name = filepath.Base("/" + name)
	if name == "/" || name == "." || name == ".." {
		return "file"
	}
	return name
}
