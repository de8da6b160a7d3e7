// Package api adapts HTTP requests to the matching services: it decodes and
// validates request bodies, resolves the caller's profile from the bearer
// token subject, and maps service errors to status codes without leaking
// internal detail.
package api
