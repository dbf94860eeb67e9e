// Package pipeline implements the three collector stages.
//
//   - Discover: page through the asset list and persist the ticker list
//   - Provision: persist the metric list and create one directory per metric
//   - Fetch: download each (metric, ticker) series not yet on disk as CSV
//
// Stages run sequentially and share state only through the persisted lists
// and the output tree, so each can be run (and re-run) on its own.
package pipeline
