// Command templatesync keeps stored templates in step with the local template
// directory and prints the fields of a PDF form.
package main

import (
	"os"

	"github.com/certdesk/certdesk/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
