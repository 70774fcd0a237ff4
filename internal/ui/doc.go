// Package ui provides the booth terminal interface built on Bubble Tea.
//
// The Model owns only presentation state: the active view, the focused form,
// the list cursor and an optional modal. Everything about sessions and
// studios lives in a state.Store that the model reads through snapshots,
// fetched on every settled operation and on a fixed tick.
//
// User intents are dispatched as tea.Cmds that call the session and studio
// controllers; each reports back with an opDoneMsg. A session-expired error
// from any operation, or a snapshot without a session while a protected view
// is showing, returns the user to the login form.
//
// Views:
//
//   - Login and signup forms (ctrl+n switches between them)
//   - Studio list with a filter modal (f)
//   - Studio detail with edit (u) and delete (d)
//   - Create and edit forms; a local file path in the image field is
//     uploaded to the image host before submit
//   - Activity log (l), a tail of booth's own log file
//
// Theme cycling (T), the last login email and the list filters persist
// through the prefs package.
package ui
