package heal

import (
	"regexp"
	"strings"
)

// fencePattern matches a markdown code block and captures its language tag and body.
var fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n(.*?)```")

// ExtractFenced returns the body of the first ```json (or untagged) block in a chat answer.
// Blocks tagged with another language are skipped. Without a usable fence the trimmed
// text is returned unchanged.
func ExtractFenced(text string) string {
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		switch strings.ToLower(m[1]) {
		case "", "json", "json5", "jsonc":
			return strings.TrimSpace(m[2])
		}
	}
	return strings.TrimSpace(text)
}
