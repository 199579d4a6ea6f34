// Package services implements the correlation engine: import
// synchronisation, document matching, orphan reconciliation, archival and
// the query facade. Services are sequential; batch loops commit per item
// so an aborted pass always leaves the store consistent.
package services
