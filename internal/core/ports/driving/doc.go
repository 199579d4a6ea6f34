// Package driving defines the service interfaces the CLI and external
// workflow layer drive: import synchronisation, document matching, orphan
// reconciliation, archival and the query facade.
package driving
