// Package http exposes the question and ingestion services over a small
// REST API built on gin.
package http
