// Package version holds the identity constants an extension reports
// during registration (spec.md §4.2's registration request body).
package version

const (
	// Product is the extension product identifier sent at registration.
	Product = "roonkit"
	// Manufacturer identifies the entity publishing the extension.
	Manufacturer = "RoonKit"
	// Version is the library's own release version.
	Version = "0.1.0"
)
