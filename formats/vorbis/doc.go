// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis recordings through
// jfreymuth/oggvorbis so chirps can be recovered from compressed
// captures.
package vorbis
