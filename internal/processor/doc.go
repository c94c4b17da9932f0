// Package processor contains the application logic behind the hanzi commands.
// It drives queries through the orchestrator, saves and searches phrases,
// imports batch files, and produces Anki exports and database backups.
package processor
