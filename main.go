package main

import (
	"os"

	"github.com/yonagi/bridgen/app"
	"github.com/yonagi/bridgen/cui"
)

func main() {
	os.Exit(app.New(cui.New()).Run(os.Args[1:]))
}
