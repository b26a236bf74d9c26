package viewer

// PageCursor tracks the displayed page. Count stays nil until the document
// metadata is known.
type PageCursor struct {
	Page  int
	Count *int
}

func NewPageCursor() PageCursor {
	return PageCursor{Page: 1}
}

func (c *PageCursor) Reset() {
	c.Page = 1
	c.Count = nil
}

func (c *PageCursor) SetCount(n int) {
	if n < 1 {
		n = 1
	}
	c.Count = &n
	if c.Page > n {
		c.Page = n
	}
	if c.Page < 1 {
		c.Page = 1
	}
}

func (c *PageCursor) Next() bool {
	if c.Count == nil || c.Page >= *c.Count {
		return false
	}
	c.Page++
	return true
}

func (c *PageCursor) Previous() bool {
	if c.Page <= 1 {
		return false
	}
	c.Page--
	return true
}
