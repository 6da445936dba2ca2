package providers

import (
	"context"
	"sort"
	"strconv"
)

// Reserved chapter numbers. Genuine numbers are never negative.
const (
	NumberUnknown = -1.0
	NumberExtra   = -2.0
	NumberOneShot = 1.0
)

// Status is the publication status of a title. The site does not publish
// one, so every title reports StatusUnknown.
type Status int

const StatusUnknown Status = 0

func (Status) String() string {
	return "unknown"
}

type Manga struct {
	URL          string
	Title        string
	Author       string
	Description  string
	ThumbnailURL string
	Status       Status
}

type MangasPage struct {
	Mangas      []Manga
	HasNextPage bool
}

type Chapter struct {
	URL        string
	Name       string
	Number     float64
	UploadDate int64 // epoch ms, 0 if unknown
}

// Label renders the chapter number for selection and file names.
func (c Chapter) Label() string {
	switch c.Number {
	case NumberUnknown:
		return "unknown"
	case NumberExtra:
		return "extra"
	}

	return strconv.FormatFloat(c.Number, 'f', -1, 64)
}

type Page struct {
	Index    int
	ImageURL string
}

type Source interface {
	Name() string
	Popular(ctx context.Context, page int) (MangasPage, error)
	Latest(ctx context.Context, page int) (MangasPage, error)
	Search(ctx context.Context, page int, query string) (MangasPage, error)
	Details(ctx context.Context, mangaURL string) (Manga, error)
	Chapters(ctx context.Context, mangaURL string) ([]Chapter, error)
	Pages(ctx context.Context, chapterURL string) ([]Page, error)
}

// SortChapters orders chapters for reading: numbered chapters ascending,
// then extras, then chapters whose number could not be parsed. Ties keep
// their listing order.
func SortChapters(all []Chapter) {
	rank := func(c Chapter) int {
		switch c.Number {
		case NumberExtra:
			return 1
		case NumberUnknown:
			return 2
		default:
			return 0
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := rank(all[i]), rank(all[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 0 {
			return all[i].Number < all[j].Number
		}
		return false
	})
}
