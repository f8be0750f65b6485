package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"greenearth/internal/catalog"
	"greenearth/internal/storefront"
)

const commandHelp = `Commands:
  all          show every product
  cat <id>     show one category
  add <id>     add a product to the cart
  inc <id>     one more of a cart item
  dec <id>     one less of a cart item
  rm <id>      remove a cart item
  open <id>    show product details
  close        hide product details
  help         show this list
  quit         exit
`

var (
	errQuit = errors.New("quit")
	errHelp = errors.New("help")
)

// commands that take exactly one id
var idCommands = map[string]func(catalog.ID) storefront.Intent{
	"cat":  func(id catalog.ID) storefront.Intent { return storefront.SelectCategory{ID: id} },
	"add":  func(id catalog.ID) storefront.Intent { return storefront.AddToCart{ID: id} },
	"inc":  func(id catalog.ID) storefront.Intent { return storefront.IncrementQuantity{ID: id} },
	"dec":  func(id catalog.ID) storefront.Intent { return storefront.DecrementQuantity{ID: id} },
	"rm":   func(id catalog.ID) storefront.Intent { return storefront.RemoveFromCart{ID: id} },
	"open": func(id catalog.ID) storefront.Intent { return storefront.OpenDetail{ID: id} },
}

// parseCommand turns one input line into an intent. Blank lines yield a nil
// intent and no error.
func parseCommand(line string) (storefront.Intent, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "quit", "exit", "q":
		return nil, errQuit
	case "help", "?":
		return nil, errHelp
	case "all":
		return storefront.SelectAll{}, nil
	case "close":
		return storefront.CloseDetail{}, nil
	}

	build, ok := idCommands[verb]
	if !ok {
		return nil, fmt.Errorf("unknown command %q, try help", verb)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: %s <id>", verb)
	}
	return build(catalog.ID(args[0])), nil
}

// readCommands dispatches one intent per line of r until EOF or quit. quit
// reports whether the input asked to stop rather than running out.
func readCommands(r io.Reader, w io.Writer, dispatch func(storefront.Intent) error) (quit bool, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		intent, err := parseCommand(scanner.Text())
		switch {
		case errors.Is(err, errQuit):
			return true, nil
		case errors.Is(err, errHelp):
			fmt.Fprint(w, commandHelp)
			continue
		case err != nil:
			fmt.Fprintln(w, err)
			continue
		case intent == nil:
			continue
		}
		if err := dispatch(intent); err != nil {
			return false, err
		}
	}
	return false, scanner.Err()
}
