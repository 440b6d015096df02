// Package memory provides in-memory storage adapters.
//
// They back the dry-run and test paths and the cache.index = "memory"
// setting, where nothing survives the process.
package memory
