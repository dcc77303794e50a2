// Package auth caches the identity created at login and gates the form behind
// it. The web application keeps the identity in a signed session cookie that
// lives as long as the browser session; the terminal client keeps it in
// memory for the life of the process.
package auth
