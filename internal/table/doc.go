// Package table extracts HTML tables into rectangular string datasets.
//
// Tables are located by id through a chain of Locators. The default chain first
// searches the visible document tree and then every comment node, re-parsing the
// comment text as an HTML fragment. basketball-reference.com ships supplementary
// tables inside comments so they are hidden from default rendering.
package table
