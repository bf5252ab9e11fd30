package match

import "strings"

// Answer is a yes/no classification of a short reply.
type Answer int

const (
	Unknown Answer = iota
	Yes
	No
)

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

var yesWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "sure": true,
	"ok": true, "okay": true, "y": true, "confirm": true,
}

var noWords = map[string]bool{
	"no": true, "nope": true, "n": true, "nah": true, "regular": true,
	"normal": true, "none": true, "cancel": true, "plain": true, "not": true,
}

// Classify answers whether text is a confirmation or a denial.
// Tokens are checked against the fixed word lists first, in order; only when
// no token is listed does the first token starting with "y" or "n" decide.
func Classify(text string) Answer {
	tokens := Tokens(text)
	for _, tok := range tokens {
		switch {
		case yesWords[tok]:
			return Yes
		case noWords[tok]:
			return No
		}
	}
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "y"):
			return Yes
		case strings.HasPrefix(tok, "n"):
			return No
		}
	}
	return Unknown
}

// IsConfirmation reports whether text reads as "yes".
func IsConfirmation(text string) bool { return Classify(text) == Yes }

// IsDenial reports whether text reads as "no".
func IsDenial(text string) bool { return Classify(text) == No }
