// Package scholarmail extracts citation records from Google Scholar alert
// emails and persists them to a document store.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, mongo/, gemini/, goquery/).
package scholarmail
