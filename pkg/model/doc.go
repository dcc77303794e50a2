// Package model defines the form schema fetched from the remote service
// (FormSchema, Section, Field, Option), the cached Identity, and the per-field
// state the session keeps while the user fills the form (Values, ErrorMap).
// Field types form a closed set; renderers and validators switch over
// FieldType exhaustively. Value is a two-variant type so checkbox selections
// and plain strings share one map while keeping their JSON shape (array or
// string) on submission.
package model
