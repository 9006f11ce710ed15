// Command cardcache inspects and maintains the local card cache.
//
// Every command that opens the cache takes an exclusive lock on the data
// directory, loads the cache (running the cleanup sweep when it is due) and
// saves it back before exiting when the command changed anything.
//
//	cardcache stats
//	cardcache import cards.json
//	cardcache collection open deck-1 4007 89631139
//	cardcache show 4007
//	cardcache cleanup --force
package main
