package jmana

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"

	"github.com/brogergvhs/jmana/internal/providers"
)

func TestParseChapterNumber(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  float64
	}{
		{"plain", "12화", 12},
		{"dash_sub", "12-5화", 12.5},
		{"dot_sub", "12.5화", 12.5},
		{"sub_leading_zero", "12-05화", 12.05},
		{"multi_digit_sub", "3-15화", 3.15},
		{"with_title", "나 혼자만 레벨업 115화", 115},
		{"zero", "0화", 0},
		{"first_match_wins", "2부 7화 (12화)", 7},
		{"oneshot", "[단편] 어느 날", 1},
		{"oneshot_beats_number", "[단편] 37화", 1},
		{"oneshot_beats_bonus", "[단편] 번외", 1},
		{"bonus", "번외", -2},
		{"bonus_with_number", "번외 3화", -2},
		{"special_compound", "특별편 2화", -2},
		{"special_bare_word", "특별한 하루 3화", 3},
		{"no_unit", "Intro", -1},
		{"number_without_unit", "Chapter 12", -1},
		{"empty", "", -1},
		{"unit_only", "화", -1},
		{"dangling_separator", "12-화", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseChapterNumber(tt.label))
		})
	}
}

func TestParseChapterNumber_Decomposed(t *testing.T) {
	assert.Equal(t, 7.0, ParseChapterNumber(norm.NFD.String("7화")))
	assert.Equal(t, providers.NumberExtra, ParseChapterNumber(norm.NFD.String("번외편")))
}

func TestParseChapterNumber_Total(t *testing.T) {
	inputs := []string{
		strings.Repeat("9", 400) + "화",
		"\x00\xff화",
		"-3화",
		"1.2.3화",
		"   ",
	}

	for _, in := range inputs {
		got := ParseChapterNumber(in)
		assert.False(t, math.IsInf(got, 0) || math.IsNaN(got), "input %q gave %v", in, got)
	}

	assert.Equal(t, providers.NumberUnknown, ParseChapterNumber(strings.Repeat("9", 400)+"화"))
	assert.Equal(t, 3.0, ParseChapterNumber("-3화"))
	assert.Equal(t, 2.3, ParseChapterNumber("1.2.3화"))
}

func TestMetaParser_CustomTokens(t *testing.T) {
	p := NewMetaParser(Tokens{Unit: "話", Bonus: "番外"}, time.UTC)

	assert.Equal(t, 4.0, p.ChapterNumber("第4話"))
	assert.Equal(t, providers.NumberExtra, p.ChapterNumber("番外 1話"))
	assert.Equal(t, providers.NumberUnknown, p.ChapterNumber("4화"))

	// one-shot and special rules are disabled
	assert.Equal(t, 2.0, p.ChapterNumber("[단편] 2話"))
	assert.Equal(t, 2.0, p.ChapterNumber("특별편 2話"))
}

func TestMetaParser_LooseSpecial(t *testing.T) {
	tokens := DefaultTokens
	tokens.Special = "특별"
	p := NewMetaParser(tokens, nil)

	assert.Equal(t, providers.NumberExtra, p.ChapterNumber("특별한 하루 3화"))
}

func TestParseChapterDate(t *testing.T) {
	want := time.Date(2021, time.March, 15, 0, 0, 0, 0, KST).UnixMilli()
	assert.Equal(t, want, ParseChapterDate("2021-03-15"))
	assert.Equal(t, int64(1615734000000), ParseChapterDate("2021-03-15"))

	invalid := []string{
		"",
		"not-a-date",
		"2021-3-15",
		"21-03-15",
		"2021/03/15",
		"2021-02-30",
		"2021-13-01",
		"2021-03-15 10:00",
		" 2021-03-15",
		"1960-01-01",
	}

	for _, in := range invalid {
		assert.Equal(t, int64(0), ParseChapterDate(in), "input %q", in)
	}
}

func TestMetaParser_DateLocation(t *testing.T) {
	p := NewMetaParser(DefaultTokens, time.UTC)

	assert.Equal(t, int64(1615766400000), p.ChapterDate("2021-03-15"))
	assert.Equal(t, int64(0), p.ChapterDate("1970-01-01"))
	assert.Equal(t, int64(86400000), p.ChapterDate("1970-01-02"))
}

func TestParse_Idempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, 12.5, ParseChapterNumber("12-5화"))
		assert.Equal(t, int64(1615734000000), ParseChapterDate("2021-03-15"))
	}
}
