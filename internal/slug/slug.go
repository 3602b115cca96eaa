// =============================================================================
// Missouri Lobbying Ledger - Slugs
// =============================================================================
//
// URL slugs for lobbyists, legislators, organizations and groups:
//   "O'Brien & Sons, L.L.C."  ->  "obrien-sons-llc"
//   "Peña, José"              ->  "pena-jose"
//
// Make derives the base slug only. Collisions are disambiguated by the store
// at save time with Next.
//
// =============================================================================

package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a name has no sluggable characters at all.
const Fallback = "unnamed"

// Make lowercases text, folds accents, drops punctuation and joins the
// remaining words with hyphens.
func Make(parts ...string) string {
	folded := fold(strings.Join(parts, " "))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			pendingHyphen = true
		}
	}

	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Next picks the slug for a new entity given the slugs already taken that
// equal base or start with base + "-". The first claimant keeps the bare
// base; later ones get one more than the largest numeric suffix seen,
// starting at 2.
func Next(base string, taken []string) string {
	bareTaken := false
	highest := 1
	for _, s := range taken {
		if s == base {
			bareTaken = true
			continue
		}
		n, ok := suffix(base, s)
		if !ok {
			continue
		}
		bareTaken = true
		if n > highest {
			highest = n
		}
	}

	if !bareTaken {
		return base
	}
	return base + "-" + strconv.Itoa(highest+1)
}

// suffix reports the numeric suffix of s relative to base ("acme-3" -> 3).
func suffix(base, s string) (int, bool) {
	rest, ok := strings.CutPrefix(s, base+"-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 2 || strconv.Itoa(n) != rest {
		return 0, false
	}
	return n, true
}
