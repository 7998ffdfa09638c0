// ABOUTME: browse is a thin, stateful-but-serialized command wrapper
// ABOUTME: over com.roonlabs.browse:1, built on top of a roon.Connection
package browse
