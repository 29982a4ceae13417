// SPDX-License-Identifier: GPL-3.0-or-later

package web

// HTTPConfig combines RequestConfig and ClientConfig.
// It is intended to be embedded into a configuration struct.
type HTTPConfig struct {
	RequestConfig `yaml:",inline" json:""`
	ClientConfig  `yaml:",inline" json:""`
}
