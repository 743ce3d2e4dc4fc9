package textquery

import (
	"fmt"
	"net/url"
	"regexp"
)

// QueryRegex extracts matches from plain text. A pattern with capture groups
// yields its first group per match; otherwise the whole match is returned.
func QueryRegex(body []byte, pattern string, maxResults int) (*QueryResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}

	group := 0
	if re.NumSubexp() > 0 {
		group = 1
	}

	c := newCollector(ModeRegex, maxResults)
	for _, m := range re.FindAllSubmatch(body, -1) {
		if !c.add(string(m[group])) {
			break
		}
	}
	return c.result(), nil
}

// QueryForm reads form-urlencoded bodies. A key yields each of its values;
// "*" or "." yields one map of every key.
func QueryForm(body []byte, key string, maxResults int) (*QueryResult, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse form data: %w", err)
	}

	c := newCollector(ModeForm, maxResults)
	if key == "*" || key == "." {
		c.add(formMap(form))
		return c.result(), nil
	}

	for _, v := range form[key] {
		if !c.add(v) {
			break
		}
	}
	return c.result(), nil
}

// formMap flattens single-valued keys to strings.
func formMap(form url.Values) map[string]any {
	m := make(map[string]any, len(form))
	for key, vals := range form {
		if len(vals) == 1 {
			m[key] = vals[0]
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		m[key] = list
	}
	return m
}
