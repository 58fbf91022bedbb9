// Package compiler is the outward-facing surface of the DAG compiler: it
// resolves abstract DAG nodes to configuration instances, validates the
// graph against the registered step types, and drives the assembler to
// produce a pipeline. Validation entry points always return structured
// reports; only the compile entry points fail, and then with a single
// wrapped error type carrying the causal chain.
package compiler
