// SPDX-License-Identifier: EPL-2.0

// Package session coordinates one recording at a time.
//
// A Coordinator drives a recorder.Backend, forwards its events to
// observers, and when the recording stops saves the measured duration and a
// downsampled live envelope through a store.Store. The saved file is then
// decoded again on the processing queue and the decoded gains replace the
// live envelope.
//
// ImportFile adds an existing audio file the same way: the record is stored
// with an empty waveform on the import queue and then decoded.
//
// Saving runs on the recording queue and decoding on the processing queue,
// so neither blocks the caller.
package session
