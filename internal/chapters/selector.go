package chapters

import (
	"strconv"
	"strings"
)

// Filter picks chapters by label or 1-based index (chapter), by an index
// range "a-b" (rng) or by a comma separated index list. The first
// non-empty selector wins; none selects everything.
func Filter(all []Chapter, chapter, rng, list string) []Chapter {
	if chapter != "" {
		if byLabel := FilterByLabel(all, chapter); len(byLabel) > 0 {
			return byLabel
		}

		if idx, err := atoi(chapter); err == nil && idx > 0 && idx <= len(all) {
			return []Chapter{all[idx-1]}
		}

		return nil
	}

	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}

	return all
}

// FilterByLabel matches the rendered chapter number ("12", "12.5",
// "extra") or the exact chapter name.
func FilterByLabel(all []Chapter, label string) []Chapter {
	label = strings.TrimSpace(label)

	var out []Chapter
	for _, c := range all {
		if c.Label() == label || c.Name == label {
			out = append(out, c)
		}
	}

	return out
}

func FilterRange(all []Chapter, rng string) []Chapter {
	a, b, ok := strings.Cut(rng, "-")
	if !ok {
		return nil
	}

	start, err1 := atoi(a)
	end, err2 := atoi(b)
	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || start > end || end > len(all) {
		return nil
	}

	return all[start-1 : end]
}

func FilterList(all []Chapter, list string) []Chapter {
	var out []Chapter
	seen := map[int]bool{}

	for p := range strings.SplitSeq(list, ",") {
		idx, err := atoi(p)
		if err != nil || idx <= 0 || idx > len(all) || seen[idx] {
			continue
		}

		seen[idx] = true
		out = append(out, all[idx-1])
	}

	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
