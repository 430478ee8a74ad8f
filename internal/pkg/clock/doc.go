// Package clock is the single source of "now" for the dashboard.
//
// Code expiry and session lifetime are decided against Clocker.Now, so tests
// pin time with Fixed instead of sleeping.
package clock
