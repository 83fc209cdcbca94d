// Package errors provides classified error primitives used across pullfrom.
//
// A ClassifiedError carries a category, a severity, an optional cause and a
// structured context map. The CLI adapter turns them into exit codes and
// user-facing messages.
//
// Example usage:
//
//	err := errors.ForgeError("failed to list branches").
//		WithCause(originalErr).
//		WithContext("url", endpoint).
//		Build()
package errors
