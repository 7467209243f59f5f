package main

import "github.com/oss-contrib/leaderboard/cmd"

func main() {
	cmd.Execute()
}
