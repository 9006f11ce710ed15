// Package tier classifies cached entities by how recently they were used.
//
// Compute is a pure function of a Record's three timestamps and the shared
// recent-collections List. Tiers are never persisted; callers recompute them
// whenever they need one.
package tier
