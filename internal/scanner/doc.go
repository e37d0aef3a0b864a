// Package scanner enumerates the files under a playlist root.
//
// Scan walks the root recursively in lexical order and returns one Entry per
// non-directory entry, each paired with its file: URI. The walk fails as a
// whole on the first error: a missing or non-directory root yields an
// *InvalidRootError and an unreadable subdirectory yields an *AccessError.
// Nothing is skipped silently, because a dropped file would shift every
// index after it.
//
// No filtering by file type is done; whatever lives under the root is
// handed to the duration resolver, which decides what it can probe.
package scanner
