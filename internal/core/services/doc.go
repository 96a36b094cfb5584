// Package services implements the driving port interfaces.
// Services contain the retrieval and ingestion pipelines and orchestrate
// calls to driven ports (adapters).
//
// The question path is: embed the query, score and re-rank stored chunks
// (SimilaritySearch), expand hits with neighboring chunks (ContextAssembler),
// then ask the LLM. The ingest path splits documents, embeds each chunk
// (ChunkProcessor) and writes everything in one store transaction.
//
// Services are pure Go with no CGO or external dependencies.
package services
