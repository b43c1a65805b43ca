package main

import "github.com/oshokin/screeps-uploader/cmd/screeps-upload/cmd"

func main() {
	cmd.Execute()
}
