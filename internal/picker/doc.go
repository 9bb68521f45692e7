// Package picker asks the operator which account to log on with.
//
// On a terminal it shows an arrow-key list (bubbletea, styled with
// lipgloss). When stdin is not a terminal, for example under a service
// manager with a pipe, it falls back to a numbered prompt that reads
// lines until it gets a valid choice.
package picker
