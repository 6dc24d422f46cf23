package main

import (
	"github.com/weiawesome/camlink/cmd"
	pkglog "github.com/weiawesome/camlink/pkg/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("camlink exited")
	}
}
