package main

import (
	_ "github.com/astr0n0mer/linkli/src/api"
	_ "github.com/astr0n0mer/linkli/src/migration"
	"github.com/astr0n0mer/linkli/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
