// Package main provides the entry point for the resume optimizer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_optimizer",
	Short: "LLM-driven resume optimization",
	Long:  "Resume Optimizer structures a resume and a job description, analyzes their semantic alignment, tailors the resume content to the job, and generates a matching cover letter. Completed work is cached so repeated runs with identical inputs cost nothing.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
