package facility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Level identifies a floor. Basement levels are negative and are written
// as "B1", "B2", ... everywhere a level is rendered as text.
type Level int

// ParseLevel parses "3", "0" or "B2" style level names.
func ParseLevel(s string) (Level, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty floor level", ErrInvalidLevel)
	}

	if strings.HasPrefix(s, "B") {
		n, err := strconv.Atoi(s[1:])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
		}
		return Level(-n), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return Level(n), nil
}

// String renders the level, using the B prefix for basements.
func (l Level) String() string {
	if l < 0 {
		return "B" + strconv.Itoa(-int(l))
	}
	return strconv.Itoa(int(l))
}

// IsBasement reports whether the level is below ground.
func (l Level) IsBasement() bool {
	return l < 0
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalJSON accepts both 2 and "2" / "B1" forms.
func (l *Level) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return l.UnmarshalText([]byte(s))
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLevel, data)
	}
	*l = Level(n)
	return nil
}
