// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides sources, WAV fixtures and event recorders for
// tests across the module.
package audiotest
