/*
Package spec defines the declarative contract data model that drives step
matching: a StepSpecification describes the logical inputs (dependencies) and
outputs of one step type, independent of any configuration instance.

Dependencies and outputs are matched by the resolver purely on the metadata
declared here: logical names, semantic keywords, dependency types, data
types and compatible producer step types. Output property paths are parsed
into typed accessor expressions (see PropertyPath) and evaluated lazily
against the property bag of an instantiated step object.
*/
package spec
