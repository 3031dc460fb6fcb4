// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF recordings through go-audio/aiff so chirps
// can be recovered from captures made on platforms that favor AIFF.
package aiff
