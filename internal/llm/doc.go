// Package llm turns a phrase into a model prompt and turns the model's free-form
// answer back into a typed phrase. It also defines the error kinds a
// translation query can end with.
package llm
