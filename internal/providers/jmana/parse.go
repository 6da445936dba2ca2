package jmana

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/brogergvhs/jmana/internal/providers"
)

// Tokens are the localized words recognised in chapter names.
// An empty OneShot, Bonus or Special disables its rule; an empty Unit
// falls back to the default.
type Tokens struct {
	OneShot string // single-installment work
	Bonus   string // extra chapter
	// Special must be the compound "special chapter" form. The bare word for
	// "special" also shows up in regular titles, so a label like
	// "특별한 하루 3화" stays a numbered chapter. Titles that contain the
	// compound form by accident are still classified as extras.
	Special string
	Unit    string // suffix after the chapter number
}

var DefaultTokens = Tokens{
	OneShot: "[단편]",
	Bonus:   "번외",
	Special: "특별편",
	Unit:    "화",
}

const dateLayout = "2006-01-02"

// KST is the reference calendar for upload dates.
var KST = time.FixedZone("KST", 9*60*60)

// MetaParser derives chapter numbers and upload dates from listing text.
// It holds no mutable state and is safe for concurrent use.
type MetaParser struct {
	tokens Tokens
	number *regexp.Regexp
	loc    *time.Location
}

func NewMetaParser(t Tokens, loc *time.Location) *MetaParser {
	if t.Unit == "" {
		t.Unit = DefaultTokens.Unit
	}
	if loc == nil {
		loc = KST
	}

	return &MetaParser{
		tokens: normalizeTokens(t),
		number: regexp.MustCompile(`([0-9]+)(?:[-.]([0-9]+))?` + regexp.QuoteMeta(norm.NFC.String(t.Unit))),
		loc:    loc,
	}
}

var defaultParser = NewMetaParser(DefaultTokens, KST)

// ParseChapterNumber uses DefaultTokens.
func ParseChapterNumber(label string) float64 {
	return defaultParser.ChapterNumber(label)
}

// ParseChapterDate uses the KST calendar.
func ParseChapterDate(label string) int64 {
	return defaultParser.ChapterDate(label)
}

func normalizeTokens(t Tokens) Tokens {
	t.OneShot = norm.NFC.String(t.OneShot)
	t.Bonus = norm.NFC.String(t.Bonus)
	t.Special = norm.NFC.String(t.Special)
	t.Unit = norm.NFC.String(t.Unit)
	return t
}

func contains(s, token string) bool {
	return token != "" && strings.Contains(s, token)
}

// ChapterNumber returns the ordering key for a chapter name, or one of the
// providers.Number* sentinels.
func (p *MetaParser) ChapterNumber(label string) float64 {
	name := norm.NFC.String(label)

	if contains(name, p.tokens.OneShot) {
		return providers.NumberOneShot
	}
	if contains(name, p.tokens.Bonus) || contains(name, p.tokens.Special) {
		return providers.NumberExtra
	}

	m := p.number.FindStringSubmatch(name)
	if m == nil {
		return providers.NumberUnknown
	}

	raw := m[1]
	if m[2] != "" {
		raw += "." + m[2]
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return providers.NumberUnknown
	}

	return n
}

// ChapterDate returns epoch milliseconds at midnight of a yyyy-MM-dd label,
// or 0 when the label is not such a date.
func (p *MetaParser) ChapterDate(label string) int64 {
	t, err := time.ParseInLocation(dateLayout, label, p.loc)
	if err != nil {
		return 0
	}

	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}

	return ms
}
