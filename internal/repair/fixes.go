package repair

import (
	"regexp"
	"strconv"
	"strings"
)

// Fix is a single named, deterministic repair applied to raw provider
// output. Fixes are pure string transforms so each can be tested on its
// own.
type Fix struct {
	Name  string
	Apply func(string) string
}

// Fixes returns the ordered repair pipeline. Order matters: the fence
// wrapper must come off before string-level fixes can see the payload.
func Fixes() []Fix {
	return []Fix{
		{Name: "strip_code_fence", Apply: StripCodeFence},
		{Name: "escape_control_chars", Apply: EscapeControlChars},
		{Name: "unwrap_string_arrays", Apply: UnwrapStringArrays},
	}
}

// StripCodeFence removes a leading/trailing fenced-code-block wrapper.
// Providers often wrap JSON in ```json ... ``` blocks even when
// instructed not to.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line if present.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// controlEscapes maps the control characters providers commonly emit
// unescaped inside string values to their JSON escape sequences.
var controlEscapes = map[byte]string{
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'\b': `\b`,
	'\f': `\f`,
}

// EscapeControlChars escapes literal control characters that appear
// unescaped inside string values. Control characters outside strings are
// structural whitespace and left alone.
func EscapeControlChars(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
				sb.WriteByte(c)
			case c == '\\':
				escaped = true
				sb.WriteByte(c)
			case c == '"':
				inString = false
				sb.WriteByte(c)
			default:
				if esc, ok := controlEscapes[c]; ok {
					sb.WriteString(esc)
				} else {
					sb.WriteByte(c)
				}
			}
			continue
		}

		if c == '"' {
			inString = true
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

// stringArrayPattern matches a JSON string value whose content is
// bracketed text, i.e. an array-valued field the provider emitted as a
// string: "field": "[\"a\", \"b\"]" or "field": "[a, b]".
var stringArrayPattern = regexp.MustCompile(`"\[(?:[^"\\]|\\.)*\]"`)

// UnwrapStringArrays rewrites array-valued fields that were emitted as
// strings containing bracketed, comma-separated text into true nested
// arrays.
func UnwrapStringArrays(text string) string {
	return stringArrayPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner, err := strconv.Unquote(match)
		if err != nil {
			return match
		}
		return rebuildArray(inner)
	})
}

// rebuildArray turns the unquoted bracketed text into a JSON array
// literal. Items that already carry quotes are kept; bare items are
// quoted.
func rebuildArray(bracketed string) string {
	body := strings.TrimSpace(bracketed)
	body = strings.TrimPrefix(body, "[")
	body = strings.TrimSuffix(body, "]")
	body = strings.TrimSpace(body)

	if body == "" {
		return "[]"
	}

	items := splitTopLevel(body)
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.HasPrefix(item, `"`) && strings.HasSuffix(item, `"`) && len(item) >= 2 {
			quoted = append(quoted, item)
		} else {
			quoted = append(quoted, strconv.Quote(item))
		}
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// splitTopLevel splits comma-separated items, respecting quoted spans so
// commas inside item text do not split the item.
func splitTopLevel(body string) []string {
	var items []string
	var current strings.Builder
	inString := false
	escaped := false

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
			current.WriteByte(c)
		case c == '\\':
			escaped = true
			current.WriteByte(c)
		case c == '"':
			inString = !inString
			current.WriteByte(c)
		case c == ',' && !inString:
			items = append(items, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	items = append(items, current.String())
	return items
}
