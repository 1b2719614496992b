// Package cache stores synthesized sentences so revisiting a passage does
// not run the speech engine again. It has two levels: an in-memory LRU (L1)
// and a zstd-compressed disk store (L2) that survives restarts and expires
// entries after a configurable number of days.
package cache
