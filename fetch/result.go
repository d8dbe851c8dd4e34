// @license
// Copyright (C) 2025  Dinko Korunic
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package fetch

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

const (
	FieldID       = "id"
	FieldFullName = "full_name"
	FieldEmail    = "email"
)

var (
	errNotObject = errors.New("record is not a JSON object")
	errNotString = errors.New("field is not a string")

	// numbers are kept as json.Number so Extra passes backend values through unmodified
	json = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		UseNumber:              true,
	}.Froze()
)

// UnmarshalJSON decodes a flat backend record, lifting id and full_name into typed fields.
func (r *Result) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	if m == nil {
		return errNotObject
	}

	id, err := stringField(m, FieldID)
	if err != nil {
		return err
	}

	fullName, err := stringField(m, FieldFullName)
	if err != nil {
		return err
	}

	delete(m, FieldID)
	delete(m, FieldFullName)

	*r = Result{ID: id, FullName: fullName}
	if len(m) > 0 {
		r.Extra = m
	}

	return nil
}

// MarshalJSON encodes the record back into the flat backend shape.
func (r Result) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		m[k] = v
	}

	if r.ID != "" {
		m[FieldID] = r.ID
	}

	if r.FullName != "" {
		m[FieldFullName] = r.FullName
	}

	return json.Marshal(m)
}

// Email returns the corporate e-mail of the record, if the backend sent one.
func (r Result) Email() string {
	s, _ := r.Extra[FieldEmail].(string)

	return s
}

// stringField returns m[key] as a string, accepting numeric IDs. Missing keys yield an empty string.
func stringField(m map[string]any, key string) (string, error) {
	switch v := m[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer: // json.Number
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %v", errNotString, key)
	}
}

// decodeResults parses a search response: a JSON array of records each carrying id and full_name.
func decodeResults(body []byte) (Results, error) {
	var raw []jsoniter.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	// null decodes into a nil slice without error
	if raw == nil {
		return nil, fmt.Errorf("%w: response is not a JSON array", ErrQuery)
	}

	res := make(Results, 0, len(raw))

	for i, x := range raw {
		var r Result
		if err := json.Unmarshal(x, &r); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrQuery, i, err)
		}

		if r.ID == "" || r.FullName == "" {
			return nil, fmt.Errorf("%w: %w: record %d", ErrQuery, ErrMissingField, i)
		}

		res = append(res, r)
	}

	return res, nil
}

// decodeResult parses a single extended record where no field is mandatory.
func decodeResult(body []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(body, &r); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	return r, nil
}
