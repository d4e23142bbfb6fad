package main

import "github.com/TIANLI0/segcheck/cmd"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	cmd.Version = Version
	cmd.BuildTime = BuildTime
	cmd.GitCommit = GitCommit
	cmd.GitBranch = GitBranch
	cmd.Execute()
}
