// Package file persists configuration as a TOML file in the recall
// config directory, with dotted keys resolving into table sections.
package file
