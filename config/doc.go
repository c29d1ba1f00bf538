// SPDX-License-Identifier: EPL-2.0

// Package config loads audwave settings from YAML and the environment.
package config
