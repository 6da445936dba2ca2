package chapters

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/brogergvhs/jmana/internal/providers"
	"github.com/brogergvhs/jmana/internal/util"
)

type Chapter struct {
	providers.Chapter

	// dup is the 1-based listing index, set when an earlier chapter
	// already maps to the same file name.
	dup int
}

func Wrap(all []providers.Chapter) []Chapter {
	out := make([]Chapter, len(all))
	taken := make(map[string]bool, len(all))

	for i, c := range all {
		ch := Chapter{Chapter: c}
		if base := ch.baseName(); taken[base] {
			ch.dup = i + 1
		} else {
			taken[base] = true
		}
		out[i] = ch
	}

	return out
}

var reUnderscores = regexp.MustCompile(`_+`)

var separators = strings.NewReplacer(
	"•", "_",
	"-", "_",
	"—", "_",
	"–", "_",
	"/", "_",
	"\\", "_",
	".", "_",
	" ", "_",
	"[", "",
	"]", "",
	"(", "",
	")", "",
)

// sanitize keeps letters (Hangul included), digits and single underscores.
func sanitize(s string) string {
	s = separators.Replace(strings.ToLower(s))

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, s)

	return strings.Trim(reUnderscores.ReplaceAllString(s, "_"), "_")
}

func (c Chapter) baseName() string {
	base := chapterBase(c.Chapter)
	if c.dup > 0 {
		return base + "_" + strconv.Itoa(c.dup)
	}
	return base
}

func chapterBase(c providers.Chapter) string {
	lbl := sanitize(c.Label())
	name := sanitize(c.Name)

	switch {
	case name == "":
		return lbl
	case c.Number < 0:
		// extras and unnumbered chapters are told apart by name only
		return name
	case name != lbl:
		return lbl + "_" + name
	}

	return lbl
}

func (c Chapter) FolderName() string {
	return c.baseName() + util.TempSuffix
}

func (c Chapter) OutputCBZ() string {
	return c.baseName() + ".cbz"
}

func (c Chapter) OutputCBZPath(out string) string {
	return filepath.Join(out, c.OutputCBZ())
}

// Uploaded returns the upload date, or the zero time when unknown.
func (c Chapter) Uploaded() time.Time {
	if c.UploadDate <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.UploadDate)
}
