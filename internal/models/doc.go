// Package models defines the task manager's domain entities.
//
// The package contains two kinds of types:
//
// 1. Entities: canonical records owned by the persistence gateway
//   - [Task] : a unit of work with title, category, optional due date, completion flag and manual order
//   - [Category] : a named, colored grouping label referenced by tasks via id
//
// 2. Mutation payloads: what callers send when changing tasks
//   - [TaskInput] : fields accepted when creating a task
//   - [TaskPatch] : a partial update where nil fields are left untouched
//
// Categories are weak references. [ResolveCategory] never fails: an unknown id resolves to [FallbackCategory].
package models
