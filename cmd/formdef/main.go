package main

import (
	"context"

	"github.com/goliatone/go-formdef/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
