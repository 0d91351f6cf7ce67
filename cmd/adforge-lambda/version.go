package main

// Overridden with -ldflags "-X main.commitHash=... -X main.buildTime=..." in the image build.
var (
	commitHash = "dev"
	buildTime  = "unknown"
)
