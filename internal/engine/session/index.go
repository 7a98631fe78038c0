package session

import (
	"fmt"
	"strconv"
)

// ParameterIndex is a port index as written in the session file.
type ParameterIndex uint32

// ParseParameterIndex accepts only a non-empty run of ASCII digits that fits
// in 32 bits. Signs, spaces and other characters strconv would tolerate are
// rejected.
func ParseParameterIndex(s string) (ParameterIndex, error) {
	if s == "" {
		return 0, fmt.Errorf("empty parameter index")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid character %q in parameter index %q", s[i], s)
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parameter index %q out of range", s)
	}
	return ParameterIndex(v), nil
}
