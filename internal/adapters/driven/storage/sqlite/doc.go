// Package sqlite implements the relationship store on an embedded SQLite
// database. The database is opened in WAL mode with a busy timeout so that
// several application instances can share it over a network location; every
// logical mutation (attach, clear, archive) is a single transaction.
package sqlite
