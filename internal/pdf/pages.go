package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePageRange parses a page selection like "1,3,5-7" into a sorted,
// deduplicated list of 1-based page numbers, validated against pageCount.
func ParsePageRange(spec string, pageCount int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty page range")
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty segment in page range %q", spec)
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := parsePageNumber(lo, pageCount)
			if err != nil {
				return nil, err
			}
			end, err := parsePageNumber(hi, pageCount)
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, fmt.Errorf("descending range %q", part)
			}
			for p := start; p <= end; p++ {
				seen[p] = true
			}
			continue
		}

		p, err := parsePageNumber(part, pageCount)
		if err != nil {
			return nil, err
		}
		seen[p] = true
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

// ParsePageOrder parses a comma-separated reordering like "3,1,2" into
// 1-based page numbers. Order is preserved and duplicates are allowed, so
// pages can be repeated or dropped.
func ParsePageOrder(spec string, pageCount int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty page order")
	}

	var order []int
	for _, part := range strings.Split(spec, ",") {
		p, err := parsePageNumber(part, pageCount)
		if err != nil {
			return nil, err
		}
		order = append(order, p)
	}
	return order, nil
}

func parsePageNumber(s string, pageCount int) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	if p < 1 || p > pageCount {
		return 0, fmt.Errorf("page %d out of range (document has %d pages)", p, pageCount)
	}
	return p, nil
}

// pageStrings converts 1-based page numbers into the string form the
// pdfcpu API takes for page selections.
func pageStrings(pages []int) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = strconv.Itoa(p)
	}
	return out
}
