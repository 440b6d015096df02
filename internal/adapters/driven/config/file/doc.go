// Package file loads run settings from a TOML or YAML file on disk.
//
// The format is chosen by extension (.toml, .yaml, .yml). A .env file next
// to the config, and one in the working directory, are loaded before the API
// token is read from the environment; variables already set win.
package file
