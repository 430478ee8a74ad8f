// Package mail sends plain-text notices, such as access codes, to a fixed set
// of operator mailboxes.
package mail
