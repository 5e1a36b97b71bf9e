// Package tasks is the task state engine: an in-memory mirror of the gateway's tasks
// with confirm-then-commit mutations, a filter/search pipeline, manual reordering and
// completion statistics.
//
// # Store
//
// [Store] owns the committed snapshot. Every mutation validates locally, makes exactly
// one gateway call and commits the gateway's canonical result only after it succeeds.
// A failed call leaves the snapshot untouched.
//
//   - [Store.Load] : fetch tasks and categories concurrently
//   - [Store.Create], [Store.Update], [Store.Toggle], [Store.Delete]
//   - [Store.Reorder] : move one visible task, resolved against the full order
//   - [Store.ReorderAll] : replace the manual order outright
//
// Reads ([Store.VisibleTasks], [Store.Stats], [Store.Get]) only touch the snapshot and
// never wait for a gateway call in flight.
//
// # Concurrency
//
// Membership changes (create, delete, reorder, load) hold an exclusive lock for their
// whole gateway round trip. Updates share that lock and serialize per task id, so edits
// to different tasks proceed in parallel while edits to one task apply in call order.
//
// # Derived views
//
// [Visible], [Project] and [Count] are pure functions over a task slice and an instant.
// The store recomputes them on every call and caches nothing.
//
// # Errors
//
// Operations fail with [*OpError]. Match its kind with errors.Is against
// [ErrValidation], [ErrNotFound], [ErrPersistence] or [ErrLoad].
package tasks
