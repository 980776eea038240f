// Package folders files documents into a hierarchy of named folders.
//
// The hierarchy and the path to document-id mapping are persisted together
// as a single record, so every operation either saves completely or leaves
// both the store and the in-memory view unchanged. The root folder has the
// empty path and always exists.
package folders
