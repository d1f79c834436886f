// Package error provides the structured error type used across Frege.
//
// Package: error
// Title: Frege Error Handling
// Description: Implements an error type carrying a code, a severity, an operation
//              name and free-form details. Script errors (syntax, semantic, runtime)
//              attach one of these as their cause so that the logger can emit
//              structured fields for them.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-16 v0.2.0: Script error codes, dropped localisation and stack pooling
//
// Usage:
//
//	err := ferror.New("unresolved variable: x").
//		WithCode(ferror.CodeScriptRuntime).
//		WithOperation("value.Evaluate").
//		WithDetail("variable", "x")
//
//	wrapped := ferror.Wrap(err, "print failed")
//	ferror.HasCode(wrapped, ferror.CodeScriptRuntime) // true
package error
