// Package authsdk is the Go client for the inkcart authentication service.
// It carries the request and response types the HTTP API speaks, plus a
// small client for services and tests that need to drive the API.
package authsdk
