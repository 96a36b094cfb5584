// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Converts text into vectors (OpenAI, Mistral, Ollama)
//   - LLMService: Generates answers from a conversation
//   - CorpusStore: Document and chunk persistence plus similarity scoring
//   - CorpusSource: The fixed document set to ingest (GitHub, local directory)
//   - ConfigStore: Application configuration
//   - PromptStore: User-editable prompt templates (optional)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
