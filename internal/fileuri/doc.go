// Package fileuri converts filesystem paths to and from "file:" URIs as
// they appear in XSPF <location> elements.
//
// Encoding keeps path separators and RFC 3986 unreserved characters and
// percent-encodes every other byte, so spaces, reserved characters and the
// UTF-8 bytes of non-ASCII names all survive a trip through a playlist:
//
//	fileuri.Encode("/music/Ünïcode #1.mp3")
//	// file:/music/%C3%9Cn%C3%AFcode%20%231.mp3
//
// No authority component is emitted for ordinary paths, matching the
// "file:" + pathname2url(path) form VLC has always accepted. A path that
// itself begins with two slashes (a UNC share) gets an empty authority so
// that Decode can tell it apart from a host name.
package fileuri
