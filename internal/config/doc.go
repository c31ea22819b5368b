// Package config loads the collector configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/logcollector/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Files ending in .yaml or .yml are decoded as YAML; anything else as TOML.
//
// # TOML Format
//
//	capture_command = "logcat -v time"
//	clear_command = "logcat -c"   # "" disables clearing
//	clear_every = 1               # clear after every N lines, 0 disables
//	sink_dir = "~/.local/share/logcollector"
//	sink_path = ""                # overrides sink_dir when set
//	clean_cache = false           # truncate the sink at start
//	filter = ["WARN", "ERROR"]    # empty collects every category
//	colors = ["#999999", "#0000FF"] # index-aligned to categories
//	colorize = false              # colored output without explicit colors
//	background = "#FFFFFFFF"
//	api_bind = "127.0.0.1:7489"
//
//	[[categories]]                # replaces the logcat catalog
//	name = "ERROR"
//	tag = "E/"                    # defaults to name
//
// # Sink Naming
//
// Without sink_path the sink is logcat.txt in sink_dir, or logcat.html when
// the output is colored.
package config
