// Package server provides HTTP routing, middleware, and the listener lifecycle for the web UI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /login"), so the mux answers
// 405 for a known path requested with the wrong method.
//
// # Middleware
//
// [Defaults] returns the stack every router in reelx carries: request ids, client address resolution and panic
// recovery from chi's middleware package, followed by [RequestLogger], which writes one charmbracelet log line per
// request.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Server] owns an [http.Server]. [Server.Serve] serves until its context is cancelled and then shuts down
// gracefully.
package server
