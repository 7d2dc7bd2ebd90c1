// Package cache memoizes generated answers on disk.
//
// Each entry is a small JSON file named by the SHA-256 of the exact query
// text. Entries expire after a TTL; expiry is lazy on read, with a bulk
// sweep available for maintenance. A corrupt entry reads as a miss and is
// removed.
package cache
