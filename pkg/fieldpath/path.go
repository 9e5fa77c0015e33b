package fieldpath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Separator joins path segments in the dotted form.
const Separator = "."

// ErrInvalidPath is matched by every *InvalidPathError.
var ErrInvalidPath = errors.New("invalid field path")

// InvalidPathError is returned when a dotted path string is malformed.
type InvalidPathError struct {
	Path    string
	Segment int // index of the first empty segment, -1 for empty input
}

func (e *InvalidPathError) Error() string {
	if e.Segment < 0 {
		return "invalid field path: path is empty"
	}
	return fmt.Sprintf("invalid field path %q: segment %d is empty", e.Path, e.Segment)
}

// Is reports whether target is ErrInvalidPath.
func (e *InvalidPathError) Is(target error) bool {
	return target == ErrInvalidPath
}

// Path is a parsed dotted field path. A valid Path is non-empty and has no
// empty segments.
type Path []string

// Parse splits s on "." and validates the segments.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, &InvalidPathError{Path: s, Segment: -1}
	}
	segs := strings.Split(s, Separator)
	for i, seg := range segs {
		if seg == "" {
			return nil, &InvalidPathError{Path: s, Segment: i}
		}
	}
	return Path(segs), nil
}

// MustParse is like Parse but panics on error. Intended for static tables.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String re-joins the segments with ".".
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Parent returns the path without its last segment, or nil for a single
// segment path.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1]
}

// Leaf returns the last segment.
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Expr returns the equivalent JSONPath expression rooted at "$". Each
// segment is a literal child key so segments containing JSONPath syntax are
// never interpreted.
func (p Path) Expr() jp.Expr {
	x := jp.R()
	for _, seg := range p {
		x = x.C(seg)
	}
	return x
}

// JSONPath renders the path as a JSONPath string, e.g. "$.properties.email".
func (p Path) JSONPath() string {
	return p.Expr().String()
}

// Overlaps reports whether one of p and other is a strict prefix of the
// other, so that writing both would nest one value inside the other.
func (p Path) Overlaps(other Path) bool {
	short, long := p, other
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return false
	}
	return short.Equal(long[:len(short)])
}
