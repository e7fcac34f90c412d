package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DeusData/syl/internal/generate"
)

var (
	genPathFlag  string
	genModelFlag string
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate annotations with a language model",
	Long: `Ask an OpenAI-compatible model to annotate a file, or with --path a
single declaration. Requires OPENAI_API_KEY; OPENAI_BASE_URL selects another
compatible endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genPathFlag, "path", "", "Annotate only this semantic path")
	generateCmd.Flags().StringVar(&genModelFlag, "model", "", "Model name (default from config)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	gen := newGenerator(sess.project)
	if !gen.Available() {
		return generate.ErrUnavailable
	}
	res, err := gen.Generate(cmd.Context(), generate.Request{
		File:         args[0],
		Model:        genModelFlag,
		SemanticPath: genPathFlag,
	})
	if err != nil {
		return err
	}
	for _, a := range res.Annotations {
		fmt.Printf("%-30s %s\n", a.SemanticPath, a.Body)
	}
	fmt.Printf("\nsaved %d annotation(s) in %d iteration(s)\n", res.Count, res.Iterations)
	return nil
}
