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
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// DefaultFallback is the name of the fallback document most SPA build
// environments produce.
const DefaultFallback = "index.html"

// Handler implements an http.Handler that serves regular files found in its
// static root, and the fallback document on all other request paths. The
// fallback document is served verbatim, unless base rewriting or a fallback
// rewriter have been configured.
type Handler struct {
	fs               fs.FS            // static root to serve from.
	fallback         string           // unrooted, cleaned path of the fallback document inside fs.
	baseRewriting    bool             // adjust <base href=""/> to the client-side base path?
	fallbackRewriter FallbackRewriter // optional application-specific post-processing.
}

// NewHandler returns a new HTTP handler serving static resources from the
// specified fsys. It serves the fallback resource instead whenever no directly
// matching regular file can be found in fsys. The fallback should be specified
// as an unrooted, slash-separated path+name; NewHandler sanitizes it anyway.
//
// NewHandler returns an error if the fallback document doesn't exist in fsys
// or isn't a regular file, so that misconfigured deployments fail at startup
// instead of with every unmatched request.
func NewHandler(fsys fs.FS, fallback string, opts ...Option) (*Handler, error) {
	h := &Handler{
		fs:       fsys,
		fallback: path.Clean("/" + fallback)[1:],
	}
	if h.fallback == "" {
		return nil, errors.Errorf("invalid fallback document name %q", fallback)
	}
	info, err := fs.Stat(fsys, h.fallback)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot use fallback document %q", h.fallback)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Errorf("fallback document %q is not a regular file", h.fallback)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// NewDirHandler returns a new HTTP handler serving the directory root from the
// OS file system, with the specified fallback document inside root.
//
//	h, err := NewDirHandler("/opt/data/myspa", DefaultFallback)
func NewDirHandler(root, fallback string, opts ...Option) (*Handler, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot use static root %q", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("static root %q is not a directory", root)
	}
	return NewHandler(os.DirFS(root), fallback, opts...)
}

// FallbackName returns the sanitized, unrooted name of the fallback document.
func (h *Handler) FallbackName() string {
	return h.fallback
}

// ServeHTTP either serves the regular file named by the request path, or
// otherwise the fallback document. The request method doesn't matter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Slapping "/" in front ensures that path.Clean never leaves the static
	// root, whatever number of ".." elements the request path carries.
	reqPath := path.Clean("/" + r.URL.Path)
	if h.serveAsset(w, r, reqPath) {
		return
	}
	h.serveFallback(w, r, reqPath)
}

// serveAsset tries to serve the regular file at the (already cleaned) reqPath,
// returning true if it did respond. If there is no such regular file, nothing
// is written and false is returned.
func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request, reqPath string) bool {
	name := reqPath[1:] // ...fs.FS uses unrooted paths.
	if name == "" {
		return false // hitting root always is a case for the fallback.
	}
	if hidden(name) {
		return false
	}
	f, err := h.fs.Open(name)
	if err != nil {
		if isMissing(err) {
			return false
		}
		NormalizedHTTPError(w, err)
		return true
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		NormalizedHTTPError(w, err)
		return true
	}
	if !info.Mode().IsRegular() {
		return false // directories and other oddities get the fallback.
	}
	content, err := readSeeker(f)
	if err != nil {
		NormalizedHTTPError(w, err)
		return true
	}
	// Not using http.FileServer here, as it would redirect ".../index.html"
	// requests instead of serving the file.
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return true
}

// serveFallback serves the fallback document, optionally rewriting its HTML
// base element and passing it through the fallback rewriter.
func (h *Handler) serveFallback(w http.ResponseWriter, r *http.Request, reqPath string) {
	f, err := h.fs.Open(h.fallback)
	if err != nil {
		NormalizedHTTPError(w, err)
		return
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		NormalizedHTTPError(w, err)
		return
	}
	if !h.baseRewriting && h.fallbackRewriter == nil {
		content, err := readSeeker(f)
		if err != nil {
			NormalizedHTTPError(w, err)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), content)
		return
	}
	contents, err := io.ReadAll(f)
	if err != nil {
		NormalizedHTTPError(w, err)
		return
	}
	doc := string(contents)
	if h.baseRewriting {
		doc = rewriteBase(doc, basePath(r, reqPath))
	}
	if h.fallbackRewriter != nil {
		doc = h.fallbackRewriter(r, doc)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), strings.NewReader(doc))
}

// isMissing returns true if err tells us that there is no file to be served at
// the requested path. Besides plainly non-existing files this covers paths
// that traverse a regular file as if it were a directory, path elements too
// long for the OS file system to ever name a file, as well as paths the fs.FS
// implementation considers to be invalid.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrInvalid) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.ENAMETOOLONG)
}

// hidden returns true if any element of the unrooted, cleaned name is a
// dotfile or dot directory, such as ".env" or ".git/config". These never get
// served as static assets.
func hidden(name string) bool {
	for _, elem := range strings.Split(name, "/") {
		if strings.HasPrefix(elem, ".") {
			return true
		}
	}
	return false
}

// readSeeker returns the contents of f as an io.ReadSeeker, as required by
// http.ServeContent. Files from os.DirFS and embed.FS already are seekable;
// only other fs.FS implementations need their file contents to be slurped.
func readSeeker(f fs.File) (io.ReadSeeker, error) {
	if rs, ok := f.(io.ReadSeeker); ok {
		return rs, nil
	}
	contents, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(contents), nil
}
