/*
Package session keeps one calculator per session and serializes access to each.

Sessions live in process memory; their histories are persisted under
per-session keys ("calculator-history:<id>") in a shared key-value store.
An optional distributed locker serializes intents for the same session
across server replicas.
*/
package session
