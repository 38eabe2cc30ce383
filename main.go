/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/sercamembert/rudyrudy/cmd"

func main() {
	cmd.Execute()
}
