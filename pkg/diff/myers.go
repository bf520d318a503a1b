package diff

// Align computes a minimum-length edit script between old and new using the
// Myers O(ND) greedy algorithm and returns it as OpExact, OpDelete and
// OpInsert tokens in forward order.
//
// The forward search keeps a sparse frontier map per diagonal and snapshots
// it for every edit distance D; the snapshots drive the backward
// reconstruction. The tie-break between the two predecessor diagonals is the
// load-bearing part: it decides which of several minimum-length scripts is
// emitted, and consumers compare literal token streams, so both passes must
// apply it identically.
func Align(old, new []string) []Token {
	maxD := len(old) + len(new)
	frontier := map[int]int{1: 0}
	trace := make([]map[int]int, 0, maxD+1)

	for d := 0; d <= maxD; d++ {
		v := make(map[int]int, d+1)

		for k := -d; k <= d; k += 2 {
			// Step into diagonal k from whichever neighbor reaches
			// further. k == -d forces an insertion step, k == d a
			// deletion step.
			var x int
			if k == -d || (k != d && frontierAt(frontier, k-1, -1) < frontierAt(frontier, k+1, 0)) {
				x = frontierAt(frontier, k+1, 0)
			} else {
				x = frontierAt(frontier, k-1, 0) + 1
			}

			y := x - k
			if y < 0 {
				continue
			}

			// Snake: free diagonal moves while lines match.
			for x < len(old) && y < len(new) && old[x] == new[y] {
				x++
				y++
			}

			v[k] = x

			if x >= len(old) && y >= len(new) {
				trace = append(trace, v)

				return reconstruct(old, new, trace)
			}
		}

		trace = append(trace, v)
		frontier = v
	}

	// Unreachable: D = len(old)+len(new) always suffices.
	return nil
}

// reconstruct walks the frontier snapshots from the terminal D back to the
// origin, emitting tokens in reverse and flipping them at the end.
func reconstruct(old, new []string, trace []map[int]int) []Token {
	tokens := make([]Token, 0, len(old)+len(new))
	x, y := len(old), len(new)

	for d := len(trace) - 1; d >= 0; d-- {
		if d == 0 {
			// Only the origin snake remains.
			for x > 0 && y > 0 {
				tokens = append(tokens, Token{Op: OpExact, Old: x, New: y})
				x--
				y--
			}

			break
		}

		v := trace[d-1]
		k := x - y

		// Predecessor diagonal, same tie-break as the forward pass.
		var (
			xPrev, yPrev int
			insert       bool
		)

		if k == -d || (k != d && frontierAt(v, k-1, -1) < frontierAt(v, k+1, -1)) {
			kPrev := k + 1
			xPrev = frontierAt(v, kPrev, 0)
			yPrev = xPrev - kPrev
			insert = true
		} else {
			kPrev := k - 1
			xPrev = frontierAt(v, kPrev, 0)
			yPrev = xPrev - kPrev
		}

		for x > xPrev && y > yPrev {
			tokens = append(tokens, Token{Op: OpExact, Old: x, New: y})
			x--
			y--
		}

		if insert {
			tokens = append(tokens, Token{Op: OpInsert, New: y})
			y--
		} else {
			tokens = append(tokens, Token{Op: OpDelete, Old: x})
			x--
		}
	}

	reverse(tokens)

	return tokens
}

// frontierAt reads the sparse frontier, falling back to def for absent
// diagonals. The asymmetric defaults used by the callers are part of the
// tie-break contract.
func frontierAt(frontier map[int]int, k, def int) int {
	if x, ok := frontier[k]; ok {
		return x
	}

	return def
}

func reverse(tokens []Token) {
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
}
