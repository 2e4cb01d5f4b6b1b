package contract

// Response holds a decoded answer. Either it is structured, with one
// typed value per declared field, or it is a raw-text fallback when the
// payload did not conform to the schema.
type Response struct {
	fields map[string]any
	raw    string
	isRaw  bool
}

// IsRaw reports whether the payload failed structural decoding and the
// answer is only available through Raw.
func (r *Response) IsRaw() bool { return r.isRaw }

// Raw returns the original response payload text.
func (r *Response) Raw() string { return r.raw }

// Get returns the value for a declared field and whether it exists.
func (r *Response) Get(name string) (any, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Bool returns the value of a confirm field, or false if absent or the
// response is raw.
func (r *Response) Bool(name string) bool {
	b, _ := r.fields[name].(bool)
	return b
}

// String returns the value of a text or single-select field, or "" if
// absent or the response is raw.
func (r *Response) String(name string) string {
	s, _ := r.fields[name].(string)
	return s
}

// Strings returns the value of a multi-select field, or nil if absent
// or the response is raw.
func (r *Response) Strings(name string) []string {
	s, _ := r.fields[name].([]string)
	return s
}

// Fields returns a copy of the structured values, nil for a raw response.
func (r *Response) Fields() map[string]any {
	if r.isRaw {
		return nil
	}
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}
