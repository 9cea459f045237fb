package main

/*------------------------------------------------------------------
 *
 * Purpose:	Print the built-in module catalog, optionally filtered by
 *		category or a free-text search term.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/corerack/corerack/corerack"
)

func main() {
	var (
		category = flag.StringP("category", "c", "", "list only this category")
		search   = flag.StringP("search", "s", "", "free-text search query")
		quiet    = flag.BoolP("quiet", "q", false, "suppress log output")
	)
	flag.Parse()

	logger := log.New(os.Stderr)
	if *quiet {
		logger.SetLevel(log.ErrorLevel)
	}

	r := corerack.NewRegistry()
	corerack.RegisterBuiltins(r)

	var entries []corerack.CatalogEntry
	switch {
	case *search != "":
		entries = r.Search(*search)
	case *category != "":
		entries = r.ByCategory(*category)
	default:
		entries = r.Catalog().Modules
	}

	if len(entries) == 0 {
		logger.Warn("no modules matched", "category", *category, "search", *search)
		return
	}

	for _, e := range entries {
		fmt.Printf("%-16s %-24s %-12s %s\n", e.TypeID, e.Name, e.Category, e.Description)
	}
}
