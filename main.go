/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import "github.com/pgadvise/pgadvise/cmd"

func main() {
	cmd.Execute()
}
