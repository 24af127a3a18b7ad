// Package domain holds the core types shared across the lead pipeline.
//
// Types here are plain data with no behavior beyond small derivation
// helpers. Services operate on them; repositories persist them. Nothing
// in this package may import from other internal packages.
package domain
