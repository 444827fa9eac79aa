/*
Package history implements the bounded, most-recent-first calculation log.

The in-memory list is authoritative: every mutation commits in memory first
and is then persisted as a whole (JSON array) under a single key of a
ports.KVStore. Persistence is best effort; failures are logged and the
calculator keeps working. Concurrent writers follow last-write-wins.
*/
package history
