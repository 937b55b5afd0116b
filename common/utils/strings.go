package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	windowsPathRx = regexp.MustCompile(`(?i)^([a-z]:\\|\\\\)`)
	libraryExtRx  = regexp.MustCompile(`\.(dylib|so|a|dll|exe)$`)
)

// Remove control symbols
func Trim(str string) string {
	return strings.TrimFunc(str, func(c rune) bool {
		return unicode.IsControl(c)
	})
}

// LeftJust pads str with spaces on the right up to width runes.
func LeftJust(str string, width int) string {
	n := len([]rune(str))
	if n >= width {
		return str
	}
	return str + strings.Repeat(" ", width-n)
}

// TrimPackage reduces a binary image path to its file name without a library extension.
func TrimPackage(pkg string) string {
	sep := "/"
	if windowsPathRx.MatchString(pkg) {
		sep = "\\"
	}
	pieces := strings.Split(pkg, sep)
	name := pieces[len(pieces)-1]
	if name == "" && len(pieces) > 1 {
		name = pieces[len(pieces)-2]
	}
	if name == "" {
		name = pkg
	}
	return libraryExtRx.ReplaceAllString(name, "")
}
