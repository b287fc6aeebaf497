// Package sources streams raw vendor payloads page-by-page from external
// content platforms, hiding pagination and transient-failure handling from
// the ingestion pipeline. Each client yields flat payload objects ready
// for the adapter boundary; vendor-specific nesting (GraphQL edge/node
// wrappers) is unwrapped here.
package sources
