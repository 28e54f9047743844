package main

import (
	_ "time/tzdata"

	"github.com/Tiliavir/monthly-invoicer/cmd"
)

func main() {
	cmd.Execute()
}
