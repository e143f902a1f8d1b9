// Copyright 2022 Harald Albrecht.
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

package spahost

import (
	"io/fs"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// NormalizedHTTPError writes an HTTP error status and message based on the
// specified error, without leaking any internal server details, such as file
// system paths.
func NormalizedHTTPError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	http.Error(w, strconv.Itoa(status)+" "+http.StatusText(status), status)
}

// httpStatus returns the HTTP status code representing err.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
