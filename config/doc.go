// Package config provides typed, defaulted access to the handful of
// settings the core respects, persisted in the store's config table.
//
// Reads fall through to hard-coded defaults when a key has never been
// set; writes go directly to the store. Keys presented in hyphenated
// form (max-retries) are normalized to their canonical underscore form
// (max_retries) at the boundary, matching operator-facing tooling that
// favors hyphens while the store favors underscores.
package config
