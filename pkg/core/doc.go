// Package core defines the shared language of the starbridge system.
//
// This package contains:
//   - The warehouse Adapter interface and its configuration
//   - Table metadata types returned by schema introspection
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
