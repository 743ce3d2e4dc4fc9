package client

// rawDecoder keeps the body text as it is. On failure the same text is
// reported as details.
type rawDecoder struct{}

func (rawDecoder) Decode(r *Response) {
	r.ok = r.raw.OK
	if !r.ok {
		r.details = r.raw.Text
		return
	}
	r.data = r.raw.Text
	r.hasData = r.raw.Text != ""
}
