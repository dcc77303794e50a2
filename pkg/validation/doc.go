// Package validation checks user input against form field descriptors and
// the login form. Validators are pure: they never mutate their inputs and
// report failures as human readable messages rather than errors, because a
// failed check is an expected outcome the user fixes by editing the field.
package validation
