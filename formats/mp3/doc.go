// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 recordings through hajimehoshi/go-mp3 so
// chirps can be recovered from compressed captures.
package mp3
