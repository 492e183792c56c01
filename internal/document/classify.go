package document

// class is one of the four byte classes spec.md §4.3 defines for
// word-granular motion. Authored fresh against the spec's exact partition:
// no teacher or pack file implements ASCII word classification without
// pulling in github.com/rivo/uniseg (ruled out by spec.md §1's
// one-column-per-byte Non-goal), so there is no corpus analog to ground
// this file on beyond spec.md itself.
type class int

const (
	classIdent class = iota
	classPunct
	classSpace
	classNewline
)

func classify(b byte) class {
	switch {
	case b == '\r' || b == '\n':
		return classNewline
	case b == ' ' || b == '\t':
		return classSpace
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_':
		return classIdent
	default:
		return classPunct
	}
}
