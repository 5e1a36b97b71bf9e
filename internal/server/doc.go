// Package server exposes the task store over HTTP as a JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added first runs outermost.
// [Logging] records every request through charmbracelet/log and [Recover] turns panics into 500s.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns internally and
// serves its own route table at GET /.
//
// # Task API
//
// [TaskHandler] implements [Handler] and serves:
//
//	GET    /tasks?filter=&q=      visible tasks (parameters override the stored query)
//	POST   /tasks                 create {title, category, due}
//	GET    /tasks/{id}            one task
//	PATCH  /tasks/{id}            partial update
//	DELETE /tasks/{id}            delete
//	POST   /tasks/{id}/toggle     flip completion
//	POST   /tasks/reorder         {ids} replaces the manual order
//	POST   /tasks/move            {from, to} moves within the visible list
//	GET    /query, PUT /query     stored filter and search
//	GET    /stats, /categories, /filters
//	POST   /load                  reload from the gateway
//
// Store error kinds map to 400 (validation), 404 (not found), 502 (persistence) and 503 (load).
package server
