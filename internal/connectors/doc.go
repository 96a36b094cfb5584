// Package connectors holds the corpus sources that feed ingestion.
// Each subpackage implements driven.CorpusSource for one origin:
// github for a repository tree, filesystem for a local directory.
package connectors
