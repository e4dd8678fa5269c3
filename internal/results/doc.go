// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package results models the JSON envelope returned by every state endpoint.
//
// An envelope is an ordered list of entries. Each entry has a key, a state and
// either a scalar value or a list of children. Once serialized, the values sit
// at the top level of the object, while the states of all entries (children
// nested inside their parents) are collected under the reserved "_results" key
// next to the "_timestamp" of the serialization.
package results
