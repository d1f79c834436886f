// Package script is the entry point to the Frege scripting engine.
//
// Package: script
// Title: Frege Script Engine
// Description: Runs Frege programs: source text is parsed by the grammar
//              package, translated to statements by ir, and executed by
//              evaluator against a fresh environment. Errors come back as
//              *SyntaxError, *SemanticError or *RuntimeError; each carries a
//              coded error from foundation/core/error for logging.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Usage:
//
//	engine := script.NewEngine(script.Options{Logger: logger})
//	result, err := engine.Run(ctx, `x = 4 * 2; print(x);`)
//	if err != nil {
//		fmt.Println(script.Describe(err))
//		return
//	}
//	fmt.Println(strings.Join(result.Output, "\n"))
package script
