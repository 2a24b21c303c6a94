// Package label defines the persisted models for reconstructed SPL
// (Structured Product Labeling) documents: the document and section
// headers, the order-preserving content-node tree, and the detail
// records hanging off list, table, and excerpt nodes.
//
// Every model carries the composite key that makes its creation
// idempotent: re-parsing the same document must find the existing rows
// instead of inserting new ones. Models never receive updates or
// deletes from the resolver; they are insert-if-absent only.
package label
