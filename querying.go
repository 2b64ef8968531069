package fieldseal

import (
	"context"
	"fmt"
)

// SerializeForQuery returns every stored encoding v may appear under
// across the field's deterministic schemes: the current scheme first,
// then each previous deterministic scheme in declared order. An external
// query layer matches an equality condition against the whole list, so
// rows written before a key or scheme change are still found.
// Non-deterministic previous schemes are skipped; their encodings cannot
// be recomputed. A nil value yields nil.
//
// The field's current scheme must be deterministic. Each scheme applies
// its own normalization, so a downcase scheme matches case-insensitively
// regardless of how v is spelled.
func (f *Field) SerializeForQuery(ctx context.Context, v any) ([]string, error) {
	ctx = ensure(ctx)
	if !f.scheme.deterministic {
		return nil, fmt.Errorf("%w: field is not deterministic", ErrConfiguration)
	}
	plaintext, present, err := f.vt.Cast(v)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	encodings := make([]string, 0, 1+len(f.scheme.previous))
	encoded, err := f.encryptText(ctx, f.scheme, plaintext)
	if err != nil {
		return nil, err
	}
	encodings = append(encodings, encoded)
	for _, prev := range f.scheme.previous {
		if !prev.deterministic {
			continue
		}
		encoded, err := f.encryptText(ctx, prev, plaintext)
		if err != nil {
			return nil, err
		}
		encodings = append(encodings, encoded)
	}
	return encodings, nil
}
