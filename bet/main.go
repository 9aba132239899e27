// Command bet follows the Bitcoin versus Ibovespa wager.
package main

import (
	"os"
	"path"

	"github.com/etnz/wager/cmd"
)

func main() { cmd.Exit(path.Base(os.Args[0])) }
