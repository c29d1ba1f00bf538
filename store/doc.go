// SPDX-License-Identifier: EPL-2.0

// Package store persists Record metadata for recordings.
//
// SQLStore uses gorm over sqlite, BadgerStore an embedded badger database.
// Open picks one by driver name.
package store
