// Package server exposes the HTTP API: search, advanced search, report
// retrieval, listing, deletion, export, and health.
//
// The handlers are a thin layer over the orchestrator and the store.
// They translate wire shapes and map domain errors to status codes;
// all investigation logic lives below them.
package server
