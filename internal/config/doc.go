/*
Package config models step configuration instances: immutable bags of step
parameters loaded from a YAML file, one per logical config name.

Fields are tiered. Required user inputs must be present in the file and are
checked with struct-tag validation at construction. System inputs receive
defaults when omitted. Derived fields are computed once, eagerly, after
validation; there is no lazy initialization, so a constructed Config is
complete and read-only for its whole life. Each instance is consumed by
exactly one step builder.
*/
package config
