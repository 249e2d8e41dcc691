// Package contact implements the contact form: field validation, the
// submission state machine and the transports that deliver a valid
// submission.
package contact
