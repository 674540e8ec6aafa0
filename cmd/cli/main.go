// babylog - caregiver message parser and Telegram bot
//
// babylog turns short chat messages about feeds, diapers and naps into
// timestamped events and uploads them to a baby-tracking service.
package main

import (
	"os"
	_ "time/tzdata"

	"github.com/ccollicutt/babylog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
