// Package validator validates configuration and dependency structs with
// go-playground/validator v10 and English messages.
//
// Failures come back as V10ValidationError, a snake_case field to message
// map that the router renders under "fields".
package validator
