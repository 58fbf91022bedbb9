/*
Package builders defines the step-builder contract and the registry mapping
step types to builder factories.

A step builder is the domain plugin turning exactly one configuration
instance into one executable step object. Builders are constructed by the
assembler with the configuration, session handle, role identifier and the
shared resolver/registry handles, expose their declared specification for
matching, and implement the step-creation contract the assembler invokes in
topological order.

Concrete builders live in subpackages (dataload, preprocess, train,
evaluate, register), one package per plugin, each registering its
specification, configuration variant and factory through a Module, the
same registration pattern the rest of the system uses at startup.
*/
package builders
