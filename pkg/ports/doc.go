/*
Package ports defines the driven ports (interfaces) of the calculator.

These interfaces decouple the calculator core from external implementations,
allowing history to live in memory, on disk, in Redis or in SQLite, and
letting each presentation decide how a destructive action is confirmed.

# Key Interfaces

  - KVStore: string key-value persistence for the serialized history.
  - Confirmer: approval step before history is cleared.
  - DistributedLocker: distributed locking for concurrent session access.
*/
package ports
