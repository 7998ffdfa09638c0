// ABOUTME: model holds the value objects parsed out of Roon's zone,
// ABOUTME: output, queue, and browse JSON shapes — parse-only, no lifecycle
package model
