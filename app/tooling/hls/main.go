package main

import "github.com/helios-protocol/microblock/app/tooling/hls/cmd"

func main() {
	cmd.Execute()
}
