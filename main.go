package main

import "github.com/junjunhencool/gnss-sdr/cmd"

func main() {
	cmd.Execute()
}
