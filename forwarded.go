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
	"html"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// ForwardedPrefixHeader, if present, specifies the prefix that needs to be
// prepended to the request's URI path in order to learn the original path
// when hitting the path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes only
// the original URI path) of a request when hitting the first path rewriting
// proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// baseRe matches an HTML base element together with its href attribute value,
// both in its XHTML-ish "/>" and its plain HTML ">" flavors. Go templating
// isn't an option here, as the fallback document must stay usable as-is
// during SPA development.
var baseRe = regexp.MustCompile(`(<base\s+href=")[^"]*("\s*/?>)`)

// rewriteBase sets the href of all base elements in doc to base.
func rewriteBase(doc, base string) string {
	href := html.EscapeString(base)
	return baseRe.ReplaceAllStringFunc(doc, func(elem string) string {
		m := baseRe.FindStringSubmatch(elem)
		return m[1] + href + m[2]
	})
}

// clientPath returns the request path as the client sent it to the first
// proxy in a chain, derived from forwarding headers. Without such headers it
// is the already cleaned reqPath we see ourselves.
func clientPath(r *http.Request, reqPath string) string {
	prefix, uri := r.Header.Get(ForwardedPrefixHeader), r.Header.Get(ForwardedUriHeader)
	switch {
	case prefix != "":
		// The proxy stripped prefix from the path.
		return path.Join("/", prefix, reqPath)
	case uri == "":
		return reqPath
	case strings.HasPrefix(uri, "/"):
		// Some proxies pass only the original path, possibly with a query.
		p, _, _ := strings.Cut(uri, "?")
		return path.Clean(p)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return reqPath
	}
	return path.Clean("/" + u.Path)
}

// basePath returns the client-side base path of the SPA: the part of the
// client's request path that a proxy stripped before passing the request on
// to us. It always ends in "/", as browsers otherwise clip off its final
// element; if there is no such common part, it is "/".
func basePath(r *http.Request, reqPath string) string {
	client := clientPath(r, reqPath)
	if reqPath == "/" && !strings.HasSuffix(client, "/") {
		// A proxy redirected /foo to /foo/ and then stripped /foo.
		client += "/"
	}
	base, ok := strings.CutSuffix(client, reqPath)
	if !ok || base == "" {
		return "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
