// Package file provides file-backed implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.dossier/config.toml
//   - PromptStore: user-editable answer prompts under ~/.dossier/prompts
package file
