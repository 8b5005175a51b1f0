package main

import (
	"fmt"
	"io"

	"github.com/ludo-technologies/treedit/service"
)

// printError prints err with its category and recovery suggestions
func printError(w io.Writer, err error) {
	if err == nil {
		return
	}

	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error: %v\n", err)
	fmt.Fprintf(w, "\n🔴 %s: %s\n", categorized.Category, categorized.Message)

	fmt.Fprintf(w, "\n💡 Recovery Suggestions:\n")
	for _, suggestion := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(w, "  • %s\n", suggestion)
	}
	fmt.Fprintf(w, "\n  📖 For more help: treedit --help\n")
}
