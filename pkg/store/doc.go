// Package store holds the in-memory collections of skills, profiles and
// projects.
//
// Every mutation copies the affected collection, changes the copy and
// swaps it in under the write lock, so readers always see a whole
// collection. Insertion order is kept and is the iteration order used by
// the cascade.
package store
