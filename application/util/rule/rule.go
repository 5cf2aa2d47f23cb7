package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	DEL  byte = 0x7F
)

var CRLF = []byte{CR, LF}

func IsAlpha(r rune) bool { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }
func IsDigit(r rune) bool { return '0' <= r && r <= '9' }

// Reference: https://datatracker.ietf.org/doc/html/rfc5234#appendix-B.1
func IsHex(r rune) bool {
	return IsDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

// IsVisible reports whether c is VCHAR or obs-text.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.5
func IsVisible(c byte) bool {
	return (0x21 <= c && c <= 0x7E) || c >= 0x80
}

// IsCTL reports whether c is a control byte, including DEL.
func IsCTL(c byte) bool {
	return c < SP || c == DEL
}

func ContainsCRLF(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == CR || s[i] == LF {
			return true
		}
	}
	return false
}
