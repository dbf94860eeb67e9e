// Package model defines the domain types shared by the collector stages.
//
// Identifiers are plain strings and are never normalized: an AssetKey may
// be an ID, a slug or a non-unique symbol, and callers own the ambiguity.
package model
