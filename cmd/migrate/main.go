package main

import (
	"log"

	tool "github.com/sandeepkv93/bazar-universal-api/internal/tools/migrate"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
