// Package config provides indentscope settings and their loading.
//
// Settings are resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← INDENTSCOPE_ANIMATE_FPS=30
//	├─────────────────────────────┤
//	│  2. Settings File           │  ← indentscope.toml / .json / .lua
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Default()
//	└─────────────────────────────┘
//
// The file format is chosen by extension. A Lua file returns a table and
// may provide functions for animate.easing and filter.
//
// Decoding collects every problem into one *ValidationError, so a bad
// file reports all of its mistakes at once. Watcher reloads the file when
// it changes on disk.
//
// # Sub-packages
//
//   - loader: file and environment loading into generic maps
package config
