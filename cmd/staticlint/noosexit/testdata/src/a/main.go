package main

import (
	"log"
	"os"
)

func shutdown(code int) {
	os.Exit(code)
}

func main() {
	defer log.Println("deferred")

	if len(os.Args) > 3 {
		shutdown(3)
	}
	if len(os.Args) > 2 {
		log.Fatalf("too many arguments: %d", len(os.Args)) // want "avoid using log.Fatalf in main.main"
	}
	if len(os.Args) > 1 {
		log.Fatal("unexpected argument") // want "avoid using log.Fatal in main.main"
	}
	os.Exit(0) // want "avoid using os.Exit in main.main"
}
