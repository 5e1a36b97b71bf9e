// Package repositories implements SQLite persistence for tasks and categories.
//
// Key Implementations:
//   - [TaskRepository] : task CRUD with soft deletes and transactional resequencing of the manual order
//   - [CategoryRepository] : pre-seeded category lookups with denormalized task counts
//
// Soft-deleted tasks (deleted_at set) are excluded from every query, so a deleted id behaves
// exactly like an unknown one. The sort_order column holds the manual order and is rewritten
// for every live task in one transaction by [TaskRepository.Reorder].
package repositories
