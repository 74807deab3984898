// Package pipeline defines the core types and collaborator interfaces shared
// across the enrichment subsystems, plus the retry policy and error taxonomy
// used by every network-calling component.
package pipeline
