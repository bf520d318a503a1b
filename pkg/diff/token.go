// Package diff aligns two sequences of source lines. It combines an exact
// Myers shortest-edit-script pass with a similarity pass that pairs
// modified-but-similar lines, and emits the alignment as a compact token
// stream.
package diff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op classifies a single alignment token.
type Op int

const (
	// OpExact pairs identical lines: "{old}:{new}".
	OpExact Op = iota
	// OpSimilar pairs modified-but-similar lines: "{old}~{new}".
	OpSimilar
	// OpDelete removes an old line: "{old}-".
	OpDelete
	// OpInsert adds a new line: "{new}+".
	OpInsert
)

// Token is one alignment operation. Old and New are 1-based line numbers;
// an unused side is zero (New for deletions, Old for insertions).
type Token struct {
	Op  Op
	Old int
	New int
}

// ErrBadToken indicates a token string that does not match the wire grammar.
var ErrBadToken = errors.New("malformed diff token")

// String renders the token in the wire format consumed by evaluation
// harnesses and persisted reports.
func (t Token) String() string {
	switch t.Op {
	case OpExact:
		return strconv.Itoa(t.Old) + ":" + strconv.Itoa(t.New)
	case OpSimilar:
		return strconv.Itoa(t.Old) + "~" + strconv.Itoa(t.New)
	case OpDelete:
		return strconv.Itoa(t.Old) + "-"
	case OpInsert:
		return strconv.Itoa(t.New) + "+"
	default:
		return ""
	}
}

// ParseToken parses the wire format back into a Token.
func ParseToken(s string) (Token, error) {
	switch {
	case strings.Contains(s, ":"):
		oldIdx, newIdx, err := splitPair(s, ":")
		if err != nil {
			return Token{}, err
		}

		return Token{Op: OpExact, Old: oldIdx, New: newIdx}, nil
	case strings.Contains(s, "~"):
		oldIdx, newIdx, err := splitPair(s, "~")
		if err != nil {
			return Token{}, err
		}

		return Token{Op: OpSimilar, Old: oldIdx, New: newIdx}, nil
	case strings.HasSuffix(s, "-"):
		oldIdx, err := strconv.Atoi(strings.TrimSuffix(s, "-"))
		if err != nil {
			return Token{}, fmt.Errorf("%w: %q", ErrBadToken, s)
		}

		return Token{Op: OpDelete, Old: oldIdx}, nil
	case strings.HasSuffix(s, "+"):
		newIdx, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
		if err != nil {
			return Token{}, fmt.Errorf("%w: %q", ErrBadToken, s)
		}

		return Token{Op: OpInsert, New: newIdx}, nil
	default:
		return Token{}, fmt.Errorf("%w: %q", ErrBadToken, s)
	}
}

func splitPair(s, sep string) (int, int, error) {
	left, right, _ := strings.Cut(s, sep)

	oldIdx, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadToken, s)
	}

	newIdx, err := strconv.Atoi(right)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadToken, s)
	}

	return oldIdx, newIdx, nil
}

// Strings renders a token slice in wire format, preserving order.
func Strings(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.String()
	}

	return out
}
