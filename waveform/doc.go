// SPDX-License-Identifier: EPL-2.0

// Package waveform turns amplitude series into display envelopes.
//
// Two producers feed it. A recorder appends one live amplitude per progress
// tick into an AmplitudeBuffer and Policy.Downsample fits that series when
// the recording stops. The streaming decoder emits one gain per frame window
// and Normalize calibrates those gains against their own histogram:
//
//	gains := result.Gains
//	env := waveform.Normalize(gains, len(gains), 255)
//	levels := waveform.ZoomLevels(env)
//
// The two paths are not expected to agree exactly. The decoded envelope is
// the one kept at rest.
package waveform
