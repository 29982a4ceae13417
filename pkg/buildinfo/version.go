// SPDX-License-Identifier: GPL-3.0-or-later

package buildinfo

// Version stores the agent's version number. It's set during the build process using build flags.
var Version = "v0.1.0"
