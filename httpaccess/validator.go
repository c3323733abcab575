package httpaccess

import (
	"slices"
	"strconv"
	"strings"

	"github.com/kbukum/httpaccess/config"
	"github.com/kbukum/httpaccess/errors"
)

// DefaultResponseCodes is the accepted-status list used when
// httpAccess.responsesCodeAuthorized is not set.
const DefaultResponseCodes = "200,201,202"

// ResponseStatusValidator decides whether a response status counts as
// success.
type ResponseStatusValidator interface {
	Validate(status int) bool
}

// ValidatorFunc adapts a function to ResponseStatusValidator.
type ValidatorFunc func(status int) bool

// Validate implements ResponseStatusValidator.
func (f ValidatorFunc) Validate(status int) bool { return f(status) }

// Status2xx accepts every 2xx status.
var Status2xx ResponseStatusValidator = ValidatorFunc(func(status int) bool {
	return status >= 200 && status < 300
})

// StatusSet accepts exactly the statuses it contains. The zero value
// accepts nothing.
type StatusSet struct {
	codes map[int]struct{}
}

// NewStatusSet builds a StatusSet from codes.
func NewStatusSet(codes ...int) StatusSet {
	s := StatusSet{codes: make(map[int]struct{}, len(codes))}
	for _, c := range codes {
		s.codes[c] = struct{}{}
	}
	return s
}

// ParseStatusSet parses a comma-separated list of status codes. Blank
// tokens are skipped; any other token that is not an integer is an error.
// An input with no codes at all yields the DefaultResponseCodes set.
func ParseStatusSet(raw string) (StatusSet, error) {
	set, reason := parseStatusSet(raw)
	if reason != "" {
		return StatusSet{}, errors.InvalidInput("status", reason)
	}
	return set, nil
}

// LoadStatusValidator reads key from store and parses it with
// ParseStatusSet, using def when the key is absent or blank.
func LoadStatusValidator(store config.PropertyStore, key, def string) (StatusSet, error) {
	raw := strings.TrimSpace(store.GetProperty(key))
	if raw == "" {
		raw = def
	}
	set, reason := parseStatusSet(raw)
	if reason != "" {
		return StatusSet{}, errors.InvalidConfig(key, raw, reason)
	}
	return set, nil
}

var defaultStatusSet = NewStatusSet(200, 201, 202)

func parseStatusSet(raw string) (StatusSet, string) {
	var codes []int
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		code, err := strconv.Atoi(tok)
		if err != nil {
			return StatusSet{}, "status code " + strconv.Quote(tok) + " is not an integer"
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return defaultStatusSet, ""
	}
	return NewStatusSet(codes...), ""
}

// Validate implements ResponseStatusValidator.
func (s StatusSet) Validate(status int) bool {
	_, ok := s.codes[status]
	return ok
}

// Codes returns the accepted statuses in ascending order.
func (s StatusSet) Codes() []int {
	out := make([]int, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
