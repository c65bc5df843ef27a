// Package main provides the entry point for the personscan CLI.
//
// personscan aggregates open-source intelligence about a person from
// web search, social media, breach databases, domain registrations,
// and structured government-ID registries into one investigation report.
//
// Usage:
//
//	personscan serve
//	personscan search "Ravi Kumar" --location Mumbai
//
// See --help for all available options.
package main

// main is the entry point for personscan.
func main() {
	Execute()
}
