package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/toolchange/state"
)

func main() {
	schemaBytes, err := state.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	outputPath := filepath.Join("state", "state.schema.json")
	if err := os.WriteFile(outputPath, append(schemaBytes, '\n'), 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated state schema at %s", outputPath)
}
