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
	"net/http"
)

// Option sets optional properties at the time of creating a Handler.
type Option func(*Handler)

// FallbackRewriter rewrites (parts of) the fallback document contents to be
// delivered to a requesting client, after the base element has been updated
// (if base rewriting is enabled at all).
type FallbackRewriter func(r *http.Request, doc string) string

// WithBaseRewriting enables updating the fallback document's HTML base element
// to the client-side base path, as determined from forwarding proxy headers.
func WithBaseRewriting() Option {
	return func(h *Handler) {
		h.baseRewriting = true
	}
}

// WithFallbackRewriter sets the specified FallbackRewriter that gets called
// before delivering the fallback document contents to requesting clients,
// allowing for application-specific changes.
func WithFallbackRewriter(rewriter FallbackRewriter) Option {
	return func(h *Handler) {
		h.fallbackRewriter = rewriter
	}
}
