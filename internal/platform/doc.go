// Package platform defines the discussion-platform capabilities the bot
// relies on: reading the intake thread, publishing link posts, replying,
// looking records up, and approving its own posts.
//
// The reddit subpackage is the production implementation. Engine packages
// depend only on the Platform interface so tests can substitute fakes.
package platform
