// Package utils provides small conversion helpers shared by the HTTP handlers
// and the CLI, such as lenient query-string booleans and "name=value" flag
// parsing.
package utils
