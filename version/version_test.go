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

package version

import (
	"strings"
	"testing"
)

func TestReadVersion(t *testing.T) {
	t.Parallel()

	// Test with a known dependency
	path := "golang.org/x/oauth2"
	version := ReadVersion(path)

	if !strings.HasPrefix(version, path) {
		t.Errorf("ReadVersion() = %s, want it to start with %s", version, path)
	}

	// Unknown paths come back unchanged
	if v := ReadVersion("example.org/none"); v != "example.org/none" {
		t.Errorf("ReadVersion() = %s, want example.org/none", v)
	}
}

func TestMainVersion(t *testing.T) {
	t.Parallel()

	if MainVersion() == "" {
		t.Error("MainVersion() should never be empty")
	}
}
