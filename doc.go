/*

Package spahost serves a "Single Page Application" (SPA) from a static root,
falling back to a single entry document for every request path that doesn't
name a regular file inside that root. This way, client-side DOM routes survive
bookmarking and page reloads.

The Handler type implements http.Handler and thus is the request handling entry
point for whatever process hosts it: a plain http.Server, a router, or a
hosting platform adapter. Handler fetches its resources from any provider
implementing fs.FS, such as os.DirFS or an embed.FS.

The static root and the fallback document are fixed when creating a Handler;
NewHandler refuses to create a Handler whose fallback document is missing.

Behind path rewriting reverse proxies, the WithBaseRewriting option adjusts the
fallback document's <base href="..."/> element to the original client-side base
path, as learnt from the X-Forwarded-Prefix and X-Forwarded-Uri headers.

*/
package spahost
