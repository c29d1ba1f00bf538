// SPDX-License-Identifier: EPL-2.0

// Package queue provides named sequential task queues. A task may block,
// which stalls only its own queue.
package queue
