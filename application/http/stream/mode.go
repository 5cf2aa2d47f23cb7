package stream

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Mode is a fopen style open mode. e.g. "r", "w+b", "a".
// 'b' and 't' flags are accepted and ignored.
type Mode string

const (
	ModeRead      Mode = "r"
	ModeReadWrite Mode = "r+"
	ModeWrite     Mode = "w"
	ModeTruncRW   Mode = "w+"
)

func (m Mode) Readable() bool { return strings.ContainsAny(string(m), "r+") }
func (m Mode) Writable() bool { return strings.ContainsAny(string(m), "+acwx") }

// flags converts m into flags of [os.OpenFile].
func (m Mode) flags() (int, error) {
	s := strings.NewReplacer("b", "", "t", "").Replace(string(m))
	plus := strings.HasSuffix(s, "+")
	s = strings.TrimSuffix(s, "+")

	rw := os.O_WRONLY
	if plus {
		rw = os.O_RDWR
	}

	switch s {
	case "r":
		if plus {
			return os.O_RDWR, nil
		}
		return os.O_RDONLY, nil
	case "w":
		return rw | os.O_CREATE | os.O_TRUNC, nil
	case "a":
		return rw | os.O_CREATE | os.O_APPEND, nil
	case "x":
		return rw | os.O_CREATE | os.O_EXCL, nil
	case "c":
		return rw | os.O_CREATE, nil
	}

	return 0, errors.Errorf("unknown mode: %q", string(m))
}
