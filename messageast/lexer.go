package messageast

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// tokenKind mirrors NodeKind before adjacent Text/Whitespace runs are
// merged by the parser.
type tokenKind = NodeKind

type token struct {
	kind tokenKind
	span Span
	text string
	name string
}

const (
	sigilCommand        = '/'
	sigilMentionUser    = '@'
	sigilMentionChannel = '#'
)

// lex splits raw into whitespace runs and words, where a word is a maximal
// run of non-whitespace grapheme clusters (an interior sigil never splits a
// word, so "foo@bar" lexes as one Text word, not Text followed by a
// mention). A word's kind is decided by its leading grapheme under a
// positional rule: "/" only introduces a Command when the word starts at
// grapheme position 0 of the message; "@" and "#" always introduce a
// mention, since by construction a word either starts the message or is
// preceded by a whitespace run. A sigil with nothing following it, or one
// that fails its positional rule, degrades to a plain Text word.
func lex(raw string) []token {
	clusters := graphemeClusters(raw)

	var toks []token
	i := 0
	for i < len(clusters) {
		if isWhitespace(clusters[i]) {
			end := i + 1
			for end < len(clusters) && isWhitespace(clusters[end]) {
				end++
			}
			toks = append(toks, token{kind: KindWhitespace, span: Span{i, end}, text: join(clusters[i:end])})
			i = end
			continue
		}

		end := i + 1
		for end < len(clusters) && !isWhitespace(clusters[end]) {
			end++
		}
		toks = append(toks, wordToken(clusters[i:end], i, end))
		i = end
	}
	return toks
}

func wordToken(word []string, start, end int) token {
	full := join(word)
	if len(word) < 2 {
		return token{kind: KindText, span: Span{start, end}, text: full}
	}

	switch word[0] {
	case string(sigilCommand):
		if start != 0 {
			return token{kind: KindText, span: Span{start, end}, text: full}
		}
		return token{kind: KindCommand, span: Span{start, end}, text: full, name: join(word[1:])}
	case string(sigilMentionUser):
		return token{kind: KindMentionUser, span: Span{start, end}, text: full, name: join(word[1:])}
	case string(sigilMentionChannel):
		return token{kind: KindMentionChannel, span: Span{start, end}, text: full, name: join(word[1:])}
	default:
		return token{kind: KindText, span: Span{start, end}, text: full}
	}
}

func isWhitespace(c string) bool {
	for _, r := range c {
		return unicode.IsSpace(r)
	}
	return false
}

func join(clusters []string) string {
	s := ""
	for _, c := range clusters {
		s += c
	}
	return s
}

// graphemeClusters splits s into its user-perceived characters using the
// Unicode text segmentation algorithm, so a position in a Span counts
// grapheme clusters rather than bytes or runes.
func graphemeClusters(s string) []string {
	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}
