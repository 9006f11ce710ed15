// Package language normalizes the language tags attached to cached card,
// product and FAQ records so that per-language maps use one key per locale.
package language
