// ABOUTME: transport is a thin, non-reentrant command wrapper over
// ABOUTME: com.roonlabs.transport:2, built on top of a roon.Connection
package transport
