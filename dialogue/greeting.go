package dialogue

import (
	"strings"
	"unicode"
)

// GreetingDetector flags turns that contain a greeting so the question
// can greet back.
type GreetingDetector struct {
	Keywords []string
}

func NewGreetingDetector() *GreetingDetector {
	return &GreetingDetector{
		Keywords: []string{"안녕", "반가", "hello", "hi", "hey", "good morning"},
	}
}

// IsGreeting reports whether any keyword starts a word of input.
func (d *GreetingDetector) IsGreeting(input string) bool {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return false
	}
	prev := ' '
	for i, r := range normalized {
		if !isWordRune(prev) && d.matchAt(normalized[i:]) {
			return true
		}
		prev = r
	}
	return false
}

func (d *GreetingDetector) matchAt(s string) bool {
	for _, keyword := range d.Keywords {
		if !strings.HasPrefix(s, keyword) {
			continue
		}
		// "hi" must not match "high fiber"; Korean keywords are stems.
		rest := s[len(keyword):]
		if rest == "" || !isASCIILetter(rest[0]) || !isASCIILetter(keyword[0]) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
