package placeholder

import "runtime"

// Token is one member of the closed placeholder vocabulary.
//
// The declaration order is the shrink priority: more specific directories
// come first.
type Token int

const (
	InstallRoot Token = iota
	CloudSave
	VendorAppData
	LocalLow
	XDGConfig
	XDGData
	LocalAppData
	RoamingAppData
	Documents
	Home

	tokenCount
)

var tokenText = [tokenCount]string{
	InstallRoot:    "{GameRoot}",
	CloudSave:      "{SteamUserData}",
	VendorAppData:  "{GOGAppData}",
	LocalLow:       "{LocalLow}",
	XDGConfig:      "{XDGConfig}",
	XDGData:        "{XDGData}",
	LocalAppData:   "{LocalAppData}",
	RoamingAppData: "{AppData}",
	Documents:      "{Documents}",
	Home:           "{Home}",
}

// String returns the token as it appears inside a portable path.
func (t Token) String() string {
	if t < 0 || t >= tokenCount {
		return "{Unknown}"
	}
	return tokenText[t]
}

// Tokens returns every token in priority order.
func Tokens() []Token {
	out := make([]Token, 0, tokenCount)
	for t := Token(0); t < tokenCount; t++ {
		out = append(out, t)
	}
	return out
}

// ParseToken reports whether component is exactly a placeholder token.
// Substrings never match: "{Home}Saves" is a literal component.
func ParseToken(component string) (Token, bool) {
	for t := Token(0); t < tokenCount; t++ {
		if tokenText[t] == component {
			return t, true
		}
	}
	return 0, false
}

// Family is an operating system family as far as save locations are concerned.
type Family string

const (
	Windows Family = "windows"
	Linux   Family = "linux"
	MacOS   Family = "macos"
)

func (f Family) String() string { return string(f) }

// Families lists every supported family.
func Families() []Family {
	return []Family{Windows, Linux, MacOS}
}

// CurrentFamily returns the family of the running host. Every non-Windows,
// non-Darwin system is treated as generic POSIX.
func CurrentFamily() Family {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	default:
		return Linux
	}
}
