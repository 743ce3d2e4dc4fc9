package textquery

// QueryResult holds the values extracted from one response.
type QueryResult struct {
	Values []any    `json:"values"`
	Count  int      `json:"count"`
	Mode   string   `json:"mode"`
	Errors []string `json:"errors,omitempty"`
}

// collector gathers extracted values up to a limit; 0 means no limit.
type collector struct {
	mode   string
	limit  int
	values []any
}

func newCollector(mode string, limit int) *collector {
	return &collector{mode: mode, limit: limit, values: []any{}}
}

// full reports whether no more values are accepted.
func (c *collector) full() bool {
	return c.limit > 0 && len(c.values) >= c.limit
}

// add appends v and reports whether more values are accepted.
func (c *collector) add(v any) bool {
	if c.full() {
		return false
	}
	c.values = append(c.values, v)
	return !c.full()
}

// addText appends non-blank text.
func (c *collector) addText(s string) bool {
	if s == "" {
		return !c.full()
	}
	return c.add(s)
}

func (c *collector) result() *QueryResult {
	return &QueryResult{
		Values: c.values,
		Count:  len(c.values),
		Mode:   c.mode,
	}
}
