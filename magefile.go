//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// go-sqlite3 is a cgo package
var cgoEnv = map[string]string{"CGO_ENABLED": "1"}

// Default target to run when none is specified
var Default = Build

// Build compiles the hanzi binary
func Build() error {
	return sh.RunWithV(cgoEnv, "go", "build", "-o", "hanzi", "./cmd/hanzi")
}

// Test runs all package tests with the race detector
func Test() error {
	return sh.RunWithV(cgoEnv, "go", "test", "-race", "./...")
}

// Vet runs go vet over all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install tests and installs hanzi into GOPATH/bin
func Install() error {
	mg.Deps(Vet, Test)
	return sh.RunWithV(cgoEnv, "go", "install", "./cmd/hanzi")
}
