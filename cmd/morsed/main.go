package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/station"
)

func init() {
	station.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	s := station.NewConfig().MustNewStation()
	if err := fx.NewRunner().HandleSignals().Go(s).Wait(); err != nil {
		glog.Fatalf("%s: %v", s.Name(), err)
	}
}
