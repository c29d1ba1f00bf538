// SPDX-License-Identifier: EPL-2.0

// Package utils holds small PCM16 helpers shared by the decoder and the
// recorder.
package utils
