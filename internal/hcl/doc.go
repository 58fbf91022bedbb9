// Package hcl loads pipeline definition files. It is responsible for file
// discovery, HCL parsing, and translating the parsed blocks into the
// agnostic definition model: a step DAG plus node-to-config bindings.
package hcl
