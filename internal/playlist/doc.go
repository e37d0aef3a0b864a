// Package playlist builds VLC-flavored XSPF playlists.
//
// A Builder resolves the duration of every scanned file, possibly over a
// bounded worker pool, and assembles a Document whose tracks keep the scan
// order. Marshal renders the Document as XSPF 1 with the VLC extension
// namespace: every track carries a vlc:id equal to its index, and the
// playlist-level extension lists one vlc:item per track with the same ids in
// the same order.
//
// Example output for a single file:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<playlist version="1" xmlns="http://xspf.org/ns/0/" xmlns:vlc="http://www.videolan.org/vlc/playlist/ns/0/">
//	  <title>Movies</title>
//	  <trackList>
//	    <track>
//	      <location>file:/media/Movies/a.mp4</location>
//	      <duration>5000</duration>
//	      <extension application="http://www.videolan.org/vlc/playlist/0">
//	        <vlc:id>0</vlc:id>
//	      </extension>
//	    </track>
//	  </trackList>
//	  <extension application="http://www.videolan.org/vlc/playlist/0">
//	    <vlc:item tid="0"></vlc:item>
//	  </extension>
//	</playlist>
package playlist
