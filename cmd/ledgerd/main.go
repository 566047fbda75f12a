/*
main.go - process entry point

See root.go for the command tree.
*/
package main

func main() {
	Execute()
}
