// Package webtext fetches batches of web pages and turns their HTML into
// clean, readable text with inline link markers.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, sqlite/).
package webtext
