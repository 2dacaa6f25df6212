package main

import (
	"context"
	"os"

	"github.com/iudanet/clipsync/internal/cli"
	"github.com/iudanet/clipsync/internal/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cliIO := iocli.NewStdio()
	root := cli.NewRootCommand(cli.BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	}, cliIO, nil)

	os.Exit(cli.Execute(context.Background(), root, cliIO))
}
