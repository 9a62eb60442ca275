// Package services provides domain services of the dispatch core that do not
// belong to a single aggregate.
//
// The package includes:
//   - OrderDispatcher: authorizes a caller identity and applies the dispatch
//     operation to the Order aggregate
package services
