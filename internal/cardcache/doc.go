// Package cardcache implements the tiered card cache engine.
//
// Cached data is split across records per entity:
//
//   - A: names and image variants per language (always loaded)
//   - B: typed card attributes (always loaded)
//   - C: long-form detail text (loaded per key on first use)
//
// Products and FAQ entries follow the same always-loaded/lazy split.
//
// Every card with recorded activity has a recency record holding three
// timestamps. Its tier (0-5) is derived from those timestamps and the list
// of recently opened collections by package tier and is never stored.
// Cleanup drops the recency record of tier-0 cards, the detail record of
// cards at tier 2 or below, and FAQ entries that have not been accessed
// recently. Initialize runs it at most once per cleanup interval.
//
// Mutations of always-loaded tables stay in memory until SaveAll. Detail
// writes go straight to the store.
package cardcache
