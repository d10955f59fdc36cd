// Package core defines the shared language of the leaplist system.
//
// This package contains:
//   - Descriptor types (Column, Action) configuring a list widget
//   - Viewer identity and submitted Values
//   - The Query contract every data source implements
//   - Predicates used by the filter step
//   - Field resolution (Schema, FieldAccessor)
//
// The Golden Rule: pkg/core imports ONLY the stdlib.
// All other packages depend on core, not the reverse.
package core
