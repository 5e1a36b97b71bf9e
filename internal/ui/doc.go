// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a single task list with modal overlays:
//  1. [ListView] : browse, toggle, reorder and delete tasks under the active filter
//  2. [AddView] : title, category and due date form for a new task
//  3. [EditView] : rename the selected task
//  4. [SearchView] : live search over titles
//  5. [ConfirmView] : confirm a delete
//
// The (view) [Model] implements bubbletea's Init/Update/View pattern. Every store call runs inside a
// [tea.Cmd] and reports back through the [Msg] union, so the interface stays responsive while the
// gateway's simulated latency elapses. The list is rebuilt from [tasks.Store.VisibleTasks] after each
// settled call.
//
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
package ui
