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

package format

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dkorunic/hse-app-search/fetch"
	jsoniter "github.com/json-iterator/go"
)

const (
	NoResults = "Nothing found"
	Delimiter = "\n"
)

// PlainResults formats search results as cleartext blocks separated by an empty line.
func PlainResults(query string, res fetch.Results) string {
	sb := &strings.Builder{}

	plainAddHeader(sb, query, len(res))

	if len(res) == 0 {
		sb.WriteString(NoResults)
		sb.WriteString("\n")

		return sb.String()
	}

	for i, r := range res {
		if i > 0 {
			sb.WriteString(Delimiter)
		}

		plainFormatResult(sb, r)
	}

	return sb.String()
}

// PlainResult formats a single record (for example from an e-mail lookup) as a cleartext block.
func PlainResult(r fetch.Result) string {
	sb := &strings.Builder{}

	plainFormatResult(sb, r)

	return sb.String()
}

// plainFormatResult writes full name and ID followed by every extra field in sorted order.
//
//nolint:interfacer
func plainFormatResult(sb *strings.Builder, r fetch.Result) {
	sb.WriteString(r.FullName)

	if r.ID != "" {
		sb.WriteString(" (")
		sb.WriteString(r.ID)
		sb.WriteString(")")
	}

	sb.WriteString("\n")

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		sb.WriteString("  ")
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(plainValue(r.Extra[k]))
		sb.WriteString("\n")
	}
}

// plainAddHeader adds cleartext header containing the query and result count, and a delimiter.
func plainAddHeader(sb *strings.Builder, query string, count int) {
	fmt.Fprintf(sb, "Search %q: %d result(s)\n\n", query, count)
}

// plainValue renders scalars as-is and nested values as compact JSON.
func plainValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool, float64:
		return fmt.Sprint(x)
	}

	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}
