// Package notifications delivers operator-facing run events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and degrades to a no-op when no topic is set. Each event kind
// can be silenced individually through the [notifications] toggles. These
// messages go to the operator; submitters are informed through platform
// replies, never through this package.
package notifications
