// Package query runs translation queries against a model server without
// blocking the caller. At most one query is in flight at a time; the caller
// submits it, polls once per tick, and may cancel it. Queries that outlive
// their time budget are abandoned.
package query
