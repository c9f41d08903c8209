// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package paginate slices a counted result set into numbered pages.
package paginate

import (
	"strconv"
	"strings"
)

// Paginator splits Count items into pages of PerPage
type Paginator struct {
	Count   int
	PerPage int
}

func New(count, perPage int) Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages is never less than 1, an empty result set has one empty page
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// GetPage returns the page named by raw, or the closest valid page:
// a non-integer value gives the first page, anything out of range the last.
func (p Paginator) GetPage(raw string) Page {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 1
	}
	last := p.NumPages()
	if n < 1 || n > last {
		n = last
	}
	return p.page(n)
}

func (p Paginator) page(n int) Page {
	last := p.NumPages()
	offset := (n - 1) * p.PerPage
	limit := p.PerPage
	if offset+limit > p.Count {
		limit = p.Count - offset
	}
	return Page{
		Number:   n,
		NumPages: last,
		Count:    p.Count,
		PerPage:  p.PerPage,
		Offset:   offset,
		Limit:    limit,
	}
}

// Page describes one slice of the result set. Offset and Limit feed the
// SQL query; the rest is for the template.
type Page struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
	Offset   int
	Limit    int
}

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) HasOtherPages() bool { return p.HasPrevious() || p.HasNext() }

func (p Page) PreviousPageNumber() int { return p.Number - 1 }

func (p Page) NextPageNumber() int { return p.Number + 1 }

// StartIndex is the 1-based position of the first item, 0 on an empty page
func (p Page) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.Offset + 1
}

// EndIndex is the 1-based position of the last item
func (p Page) EndIndex() int {
	return p.Offset + p.Limit
}

// PageSize parses a page_size parameter. Missing, malformed or
// non-positive values give def; values above max are clamped.
func PageSize(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
