package pak

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ReadRectanglesJSON parses a JSON array of {x,y,width,height,pivotX,pivotY} objects.
// Values outside the int16 range are rejected.
func ReadRectanglesJSON(r io.Reader) ([]Rectangle, error) {
	var rects []Rectangle
	if err := json.NewDecoder(r).Decode(&rects); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidRectangle, te.Field, err)
		}
		return nil, err
	}
	if rects == nil {
		rects = []Rectangle{}
	}
	return rects, nil
}

// WriteRectanglesJSON writes rects as an indented JSON array; nil writes [].
func WriteRectanglesJSON(w io.Writer, rects []Rectangle) error {
	if rects == nil {
		rects = []Rectangle{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rects)
}
