package pagination

// Cursor is a 1-based page cursor over a list of known length. Navigation
// clamps to [1, TotalPages]; an empty list still has one (empty) page.
type Cursor struct {
	page     int
	pageSize int
	total    int
}

func New(pageSize int) *Cursor {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Cursor{page: 1, pageSize: pageSize}
}

func (c *Cursor) Page() int     { return c.page }
func (c *Cursor) PageSize() int { return c.pageSize }
func (c *Cursor) Total() int    { return c.total }

func (c *Cursor) TotalPages() int {
	if c.total <= 0 {
		return 1
	}
	return (c.total + c.pageSize - 1) / c.pageSize
}

// SetTotal records a new list length and re-clamps the current page.
func (c *Cursor) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	c.total = total
	c.clamp()
}

// Reset returns the cursor to the first page.
func (c *Cursor) Reset() {
	c.page = 1
}

func (c *Cursor) SetPage(page int) {
	c.page = page
	c.clamp()
}

func (c *Cursor) Next() { c.SetPage(c.page + 1) }
func (c *Cursor) Prev() { c.SetPage(c.page - 1) }

// Bounds returns the half-open slice window [start, end) for the current
// page.
func (c *Cursor) Bounds() (start, end int) {
	start = (c.page - 1) * c.pageSize
	if start > c.total {
		start = c.total
	}
	end = start + c.pageSize
	if end > c.total {
		end = c.total
	}
	return start, end
}

func (c *Cursor) clamp() {
	if c.page < 1 {
		c.page = 1
	}
	if max := c.TotalPages(); c.page > max {
		c.page = max
	}
}
