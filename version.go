// SPDX-License-Identifier: EPL-2.0

package chirp

// version follows semantic versioning.
const version = "1.0.0"

// Version returns the SDK version string.
func Version() string { return version }
