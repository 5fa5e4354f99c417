// Package main is the meme generator command line.
//
//	meme --path dog.jpg --body "Treat yo self" --author "Rex"
//	meme ingest quotes.csv quotes.pdf
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
