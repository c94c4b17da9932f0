// Package phrase defines the data model shared by the model client and the
// local store: phrases, their languages, and the names of persisted settings.
package phrase
