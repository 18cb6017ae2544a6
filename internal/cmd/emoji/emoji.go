// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols used in merge summaries and endpoint listings.
const (
	// Success marks an object that was created or found on the target.
	Success = "✓"

	// Error marks an object that failed to migrate.
	Error = "✗"

	// Warning marks objects left for manual follow-up.
	Warning = "!"

	// Skipped marks objects the target platform cannot hold.
	Skipped = "-"

	// Arrow separates source and target in headings.
	Arrow = "→"
)
