//go:build mage

// Package main provides build targets for hubcontacts using Mage.
//
// Usage:
//
//	mage build        Compile hubcontacts to bin/
//	mage test:all     Run all tests with the race detector
//	mage test:unit    Run the pkg/ library tests
//	mage test:cover   Write a coverage profile
//	mage lint         Run go vet and golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install hubcontacts to GOPATH/bin
package main
