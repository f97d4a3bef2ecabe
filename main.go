package main

import "github.com/redactyl/tfcprobe/cmd/tfcprobe"

func main() { tfcprobe.Execute() }
