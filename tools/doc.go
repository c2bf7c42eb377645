// Package tools defines the contract between the host platform and the tools it exposes:
// the declarative parameter schema, parameter resolution, the result message protocol,
// host file handles, and the Run adapter that folds every failure into a single text message.
package tools
