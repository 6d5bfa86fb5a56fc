package main

import (
	"github.com/modelaudit/trustgate/pkg/cli"
)

func main() {
	cli.Execute()
}
