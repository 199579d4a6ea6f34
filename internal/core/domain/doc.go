// Package domain contains the core business entities of the correlation
// engine: relationships between imported orders and their documents, the
// append-only change history, and the archive records. Domain types carry
// no persistence or transport concerns.
package domain
