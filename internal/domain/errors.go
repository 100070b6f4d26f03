package domain

import "errors"

var (
	// ErrAccessDenied: no token held, or the backend rejected the one we
	// have and refresh could not recover.
	ErrAccessDenied = errors.New("access denied")

	// ErrAuthenticationRequired: the provider demands an interactive
	// re-login; the session cannot be recovered programmatically.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrTransientBackend: timeout, backend unavailable or network
	// failure. Safe to retry later; never clears the session.
	ErrTransientBackend = errors.New("transient backend failure")

	// ErrMalformedResponse: the response shape violates the expected
	// contract. The raw payload is logged before this is raised.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrManifestParse: the local install manifest is missing or
	// unreadable. The reconciler degrades to an empty local-game set.
	ErrManifestParse = errors.New("install manifest unreadable")

	ErrOfferNotFound = errors.New("offer not cached")
	ErrValueNotFound = errors.New("key/value entry not found")
)
