package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jtrefon/blt/cmd"
)

func main() {
	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
