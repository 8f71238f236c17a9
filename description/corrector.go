package description

import (
	"log/slog"
)

// whitespace lists every rune treated as blank around a link, including the
// non-breaking variants YouTube descriptions commonly contain.
const whitespace = " \t\n\r\x00\x0B\u00A0\u2060\u202F\u2007"

var (
	startBoundary   = runeSet(whitespace + ":-(")
	endBoundary     = runeSet(whitespace + ",.')")
	hashtagBoundary = runeSet(whitespace + ",.')#-")
)

func runeSet(chars string) map[rune]bool {
	set := make(map[rune]bool, len(chars))
	for _, r := range chars {
		set[r] = true
	}
	return set
}

// corrector places annotations one after another. drift and minPos carry over
// from the previous accepted annotation.
type corrector struct {
	text    []rune
	reserve []int
	drift   int
	minPos  int
	logger  *slog.Logger
}

func newCorrector(text []rune, anns []Annotation, logger *slog.Logger) *corrector {
	return &corrector{
		text:    text,
		reserve: reservedLengths(anns),
		logger:  logger,
	}
}

// reservedLengths returns, per annotation, the number of runes that this and all
// later annotations need, counting one separator wherever the declared ranges
// leave a gap.
func reservedLengths(anns []Annotation) []int {
	reserve := make([]int, len(anns))
	total, nextStart := 0, 0
	for i := len(anns) - 1; i >= 0; i-- {
		a := anns[i]
		if a.ApproxStart+a.Length < nextStart {
			total++
		}
		total += a.Length
		reserve[i] = total
		nextStart = a.ApproxStart
	}
	return reserve
}

// correct searches downward from the drift-adjusted offset for a window that
// starts and ends on a token boundary.
func (c *corrector) correct(i int, a Annotation) (MatchedRange, bool) {
	if a.Length <= 0 {
		c.logUnmatched(a)
		return MatchedRange{}, false
	}

	textLen := len(c.text)
	maxPos := textLen - c.reserve[i]
	pos := min(a.ApproxStart-c.drift, maxPos)

	for pos >= c.minPos {
		// A link may end on a line break but never contain one.
		if nl := c.indexLineBreak(pos); nl >= 0 && nl < pos+a.Length-1 {
			pos = nl - (a.Length - 1)
			continue
		}

		end := pos + a.Length
		if c.validStart(pos, a.IsHashtag) && c.validEnd(end, a.IsHashtag) {
			c.drift = a.ApproxStart - pos
			length := a.Length
			if c.text[end-1] == '\n' {
				length--
			}
			c.minPos = pos + length
			return MatchedRange{Start: pos, Length: length}, true
		}
		pos--
	}

	c.logUnmatched(a)
	return MatchedRange{}, false
}

func (c *corrector) indexLineBreak(from int) int {
	for i := from; i < len(c.text); i++ {
		if c.text[i] == '\n' {
			return i
		}
	}
	return -1
}

func (c *corrector) validStart(pos int, hashtag bool) bool {
	if pos == 0 {
		return true
	}
	if startBoundary[c.text[pos-1]] {
		return true
	}
	return hashtag && c.text[pos] == '#'
}

func (c *corrector) validEnd(end int, hashtag bool) bool {
	if end == len(c.text) {
		return true
	}
	if end > len(c.text) {
		return false
	}
	if hashtag {
		return hashtagBoundary[c.text[end]]
	}
	return endBoundary[c.text[end]]
}

func (c *corrector) logUnmatched(a Annotation) {
	prefix := c.text
	if len(prefix) > 50 {
		prefix = prefix[:50]
	}
	c.logger.Debug("annotation position cannot be corrected",
		"approx_start", a.ApproxStart,
		"length", a.Length,
		"hashtag", a.IsHashtag,
		"text_prefix", string(prefix)+"...",
	)
}
