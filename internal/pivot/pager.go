package pivot

// DefaultPageSizes are the choices offered by the page-size selector.
var DefaultPageSizes = []int{10, 20, 30, 40}

// DefaultPageSize is the page size a new table starts with.
const DefaultPageSize = 10

// Pager tracks the page size and the 1-based current page.
type Pager struct {
	PageSize int
	Current  int
}

// NewPager returns a pager on page 1. Non-positive sizes fall back to
// DefaultPageSize.
func NewPager(size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pager{PageSize: size, Current: 1}
}

// PageCount returns max(1, ceil(total/size)).
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// PageCount returns the number of pages for total rows.
func (p Pager) PageCount(total int) int { return PageCount(total, p.PageSize) }

// HasNext reports whether Next would move.
func (p Pager) HasNext(total int) bool { return p.Current < p.PageCount(total) }

// HasPrevious reports whether Previous would move.
func (p Pager) HasPrevious() bool { return p.Current > 1 }

// Next advances one page unless already on the last one.
func (p Pager) Next(total int) Pager {
	if p.HasNext(total) {
		p.Current++
	}
	return p
}

// Previous goes back one page unless already on the first one.
func (p Pager) Previous() Pager {
	if p.HasPrevious() {
		p.Current--
	}
	return p
}

// Goto sets the current page as given. It does not validate n; callers that
// render call Clamp afterwards.
func (p Pager) Goto(n int) Pager {
	p.Current = n
	return p
}

// SetPageSize changes the page size and leaves the current page alone.
// Non-positive sizes are ignored.
func (p Pager) SetPageSize(n int) Pager {
	if n > 0 {
		p.PageSize = n
	}
	return p
}

// Clamp pulls the current page into [1, PageCount(total)].
func (p Pager) Clamp(total int) Pager {
	if last := p.PageCount(total); p.Current > last {
		p.Current = last
	}
	if p.Current < 1 {
		p.Current = 1
	}
	return p
}

// NextPageSize returns the option after current in sizes, wrapping around.
// A size not in the list moves to the first option.
func NextPageSize(sizes []int, current int) int {
	if len(sizes) == 0 {
		return current
	}
	for i, s := range sizes {
		if s == current {
			return sizes[(i+1)%len(sizes)]
		}
	}
	return sizes[0]
}
