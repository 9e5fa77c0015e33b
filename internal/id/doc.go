// Package id provides identifier generation for records created by the mock
// record service and for temporary files.
//
//   - Sequence: prefixed, monotonically increasing ids such as "4" or
//     "proj_4", matching the ids of the seeded fixtures
//   - Short: 16-character random hex ids
package id
