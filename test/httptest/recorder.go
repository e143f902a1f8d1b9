// Copyright 2023 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package httptest wraps the standard library's httptest.ResponseRecorder in order
to fail any test whose handler calls response.WriteHeader more than once, or
calls it after the response body has already been started.
*/
package httptest

import (
	stdhttptest "net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// StrictRecorder wraps httptest.ResponseRecorder in order to fail tests doing
// superfluous or late WriteHeader calls.
type StrictRecorder struct {
	*stdhttptest.ResponseRecorder
	wroteHeader bool
	wroteBody   bool // an implicit 200 has been sent, too.
}

// NewStrictRecorder returns a new test response recorder detecting superfluous
// and late WriteHeader calls.
func NewStrictRecorder() *StrictRecorder {
	return &StrictRecorder{
		ResponseRecorder: stdhttptest.NewRecorder(),
	}
}

// WriteHeader implements http.ResponseWriter, failing tests that do superfluous
// or late WriteHeader calls.
func (w *StrictRecorder) WriteHeader(code int) {
	GinkgoHelper()
	Expect(w.wroteHeader || w.wroteBody).To(BeFalse(), "superfluous response.WriteHeader call")
	w.wroteHeader = true
	w.ResponseRecorder.WriteHeader(code)
}

// Write implements http.ResponseWriter, implicitly sending a 200 status if no
// status has been sent before.
func (w *StrictRecorder) Write(b []byte) (int, error) {
	w.wroteBody = true
	return w.ResponseRecorder.Write(b)
}

// WriteString implements io.StringWriter, see Write.
func (w *StrictRecorder) WriteString(s string) (int, error) {
	w.wroteBody = true
	return w.ResponseRecorder.WriteString(s)
}
