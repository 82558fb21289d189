package main

import (
	"context"
	"os"

	"github.com/tendermint/lightivc/cmd/lightivc/commands"
	"github.com/tendermint/lightivc/config"
	"github.com/tendermint/lightivc/libs/log"
)

func main() {
	ctx := context.Background()

	conf := config.DefaultConfig()
	logger := log.MustNewDefaultLogger(config.LogFormatPlain, config.DefaultLogLevel)

	rcmd := commands.RootCommand(conf, logger)
	rcmd.AddCommand(
		commands.MakeInitCommand(conf, logger),
		commands.MakeFetchCommand(conf, logger),
		commands.MakeProveCommand(conf, logger),
		commands.MakeVerifyCommand(conf, logger),
		commands.MakeShowCommand(),
		commands.VersionCmd,
	)

	if err := rcmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
