// Package main provides the entry point for the philowalk CLI.
//
// philowalk follows the first link of Wikipedia articles until it reaches
// the article "Philosophy", and reports how many links it took.
//
// Usage:
//
//	philowalk walk                 # prompt for a starting topic
//	philowalk walk "Ice cream"     # start from a topic
//	philowalk walk -b 4 Tea Coffee # walk several topics concurrently
//	philowalk history
//
// See --help for all available options.
package main

// main is the entry point for philowalk.
func main() {
	Execute()
}
