// Package driven defines the interfaces the core depends on: the
// relationship store, the search audit log, the imported row source and
// the document folder. Adapters implement these.
package driven
