// Package integrations provides shared HTTP plumbing for the remote source
// clients (Hugging Face Hub, GitHub, GitLab, and the optional GenAI
// assessor).
//
// The subpackages each expose a thin, typed client over the shared
// [Client], which handles response caching, timeouts, default headers, and
// HTTP status mapping. Source-specific knowledge (endpoints, payload
// shapes, license/tag vocabularies) lives entirely in the subpackages; the
// scoring metrics never see it.
//
// All requests are single best-effort attempts with a fixed timeout.
// Transient failures surface as coded errors that the runner converts into
// degraded-mode records.
package integrations
