// Package ui provides terminal color themes shared by the CLI output
// helpers.
package ui
