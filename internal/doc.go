// Package internal holds the HTTP plumbing shared by the API and its
// middleware: the HTTPError type and its JSON envelope, a status-recording
// ResponseWriter, and request value extractors.
package internal
