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
	"reflect"
	"strings"
	"testing"

	"github.com/dkorunic/hse-app-search/fetch"
	jsoniter "github.com/json-iterator/go"
)

func TestPlainResults(t *testing.T) {
	t.Parallel()

	res := fetch.Results{
		{ID: "lk13349", FullName: "Шишков Алексей Алексеевич", Extra: map[string]any{
			"email": "aashishkov@edu.hse.ru",
			"type":  "student",
		}},
		{ID: "lk1", FullName: "Шишков Иван"},
	}

	expected := "Search \"Шишков\": 2 result(s)\n\n" +
		"Шишков Алексей Алексеевич (lk13349)\n" +
		"  email: aashishkov@edu.hse.ru\n" +
		"  type: student\n" +
		"\n" +
		"Шишков Иван (lk1)\n"

	if actual := PlainResults("Шишков", res); actual != expected {
		t.Errorf("PlainResults() = %q, want %q", actual, expected)
	}
}

func TestPlainResultsEmpty(t *testing.T) {
	t.Parallel()

	expected := "Search \"nobody\": 0 result(s)\n\n" + NoResults + "\n"

	if actual := PlainResults("nobody", nil); actual != expected {
		t.Errorf("PlainResults() = %q, want %q", actual, expected)
	}
}

func TestPlainResult(t *testing.T) {
	t.Parallel()

	r := fetch.Result{FullName: "Шишков Алексей Алексеевич", Extra: map[string]any{
		"groups":   []any{"БПИ201", "БПИ202"},
		"is_staff": false,
		"manager":  nil,
	}}

	expected := "Шишков Алексей Алексеевич\n" +
		"  groups: [\"БПИ201\",\"БПИ202\"]\n" +
		"  is_staff: false\n" +
		"  manager: -\n"

	if actual := PlainResult(r); actual != expected {
		t.Errorf("PlainResult() = %q, want %q", actual, expected)
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()

	res := fetch.Results{{ID: "lk13349", FullName: "Шишков Алексей Алексеевич"}}

	b, err := JSON(res)
	if err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}

	var decoded []map[string]string
	if err := jsoniter.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("JSON() produced invalid JSON: %v", err)
	}

	expected := []map[string]string{{"id": "lk13349", "full_name": "Шишков Алексей Алексеевич"}}
	if !reflect.DeepEqual(decoded, expected) {
		t.Errorf("JSON() = %v, want %v", decoded, expected)
	}

	s := string(b)
	if !strings.HasSuffix(s, "\n") {
		t.Error("JSON() output should end with a newline")
	}
}
