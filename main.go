package main

import "github.com/TechyByFin/byfin-dashboard/cmd"

func main() {
	cmd.Execute()
}
