package contract

import "encoding/json"

// Schema is the runtime shape derived from an ask's descriptor list.
// It maps each field name to the type its answer must decode to:
// confirm -> bool, select with Multiple -> []string, select -> string,
// text -> string. The mapping is keyed by name; descriptor order does
// not affect it.
type Schema struct {
	fields map[string]fieldSpec
}

type fieldSpec struct {
	kind     Kind
	multiple bool
}

// NewSchema derives a schema from a descriptor list. Build one fresh
// per ask call; schemas are cheap.
func NewSchema(inputs []Input) Schema {
	fields := make(map[string]fieldSpec, len(inputs))
	for _, in := range inputs {
		fields[in.Name] = fieldSpec{kind: in.Type, multiple: in.Multiple}
	}
	return Schema{fields: fields}
}

// Len returns the number of declared fields.
func (s Schema) Len() int { return len(s.fields) }

// Decode interprets a response payload against the schema. A JSON object
// whose declared fields are all present with conforming types decodes to
// a structured Response. Anything else -- non-JSON text, a non-object
// value, or a partial or mistyped object -- yields the raw text as the
// fallback value. Decode never fails: a human client may answer a
// structured question with free text, and a usable value beats an error.
func (s Schema) Decode(raw string) *Response {
	fallback := &Response{raw: raw, isRaw: true}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return fallback
	}

	fields := make(map[string]any, len(s.fields))
	for name, spec := range s.fields {
		v, ok := obj[name]
		if !ok {
			return fallback
		}
		cv, ok := coerce(v, spec)
		if !ok {
			return fallback
		}
		fields[name] = cv
	}
	return &Response{raw: raw, fields: fields}
}

// coerce converts a decoded JSON value to the field's derived type.
func coerce(v any, spec fieldSpec) (any, bool) {
	switch spec.kind {
	case KindConfirm:
		b, ok := v.(bool)
		return b, ok
	case KindSelect:
		if spec.multiple {
			items, ok := v.([]any)
			if !ok {
				return nil, false
			}
			out := make([]string, 0, len(items))
			for _, it := range items {
				str, ok := it.(string)
				if !ok {
					return nil, false
				}
				out = append(out, str)
			}
			return out, true
		}
		str, ok := v.(string)
		return str, ok
	case KindText:
		str, ok := v.(string)
		return str, ok
	}
	return nil, false
}
