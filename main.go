package main

import "FlightDelayAnalysis/src/cmd"

func main() {
	cmd.Execute()
}
