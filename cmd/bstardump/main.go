// Command bstardump prints the header and node structure of a B*-tree
// index file pair for offline inspection.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/starsql/starsql/internal/bstar"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <index-name>\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "  index-name is the path without the .bsmet/.bsdat extension")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	tree, err := bstar.Load[bstar.Uint64](flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening index: %v\n", err)
		os.Exit(1)
	}
	defer tree.Close()

	fmt.Printf("order:      %d\n", tree.Order())
	fmt.Printf("elements:   %d\n", tree.Len())
	fmt.Printf("target:     %s\n", tree.Target())
	fmt.Printf("duplicates: %t\n", tree.AllowsDuplicates())
	fmt.Println()

	if err := tree.DumpTo(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "dumping tree: %v\n", err)
		os.Exit(1)
	}
}
