// Package otp generates numeric one-time codes.
//
// Codes are drawn uniformly from a closed decimal range using crypto/rand, so
// every value in the range is equally likely and the string length is fixed
// when the range bounds share a digit count.
package otp
