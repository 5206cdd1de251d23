package main

import (
	"github.com/robinovitch61/vl/cmd"
	"log"
	"os"
	"runtime/pprof"
)

func main() {
	os.Exit(run())
}

func run() int {
	if cpuProfile := os.Getenv("VL_CPU_PROFILE"); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
