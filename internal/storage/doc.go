// Package storage provides the optional local persistence layer.
//
// It keeps:
//   - Baseline user variables and device values when the state backend is "local"
//   - A bounded history of tick results, for the history command and debugging
package storage
