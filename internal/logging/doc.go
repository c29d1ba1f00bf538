// SPDX-License-Identifier: EPL-2.0

// Package logging wraps zap behind the small Logger interface used across
// the module. File output is rotated by lumberjack.
package logging
