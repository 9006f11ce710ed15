// Package tablestore provides the two storage classes of the card cache.
//
// Bulk tables (BulkTable, Slot) are read in full by LoadAll at startup and
// written back in full by SaveAll. Lazy tables (LazyTable) hold one record
// per key and read each key from the store the first time it is asked for.
//
// None of the types lock internally. The cache engine owns every table and
// serializes access behind its own mutex.
package tablestore
