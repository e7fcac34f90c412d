package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeusData/syl/internal/orphan"
	"github.com/DeusData/syl/internal/workspace"
)

var (
	lineFlag int
	jsonFlag bool
)

var pathsCmd = &cobra.Command{
	Use:   "paths <file>",
	Short: "Print the semantic paths of a file",
	Long: `Print the semantic tree of a file, one declaration per line with its
kind and line range. With --line, print only the paths enclosing that line,
outermost first.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaths,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Resolve a file's annotations against its current source",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var orphansCmd = &cobra.Command{
	Use:   "orphans [file]",
	Short: "Report orphaned annotations",
	Long: `Report annotations whose semantic path no longer exists. Without a
file argument every annotated file of the project is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOrphans,
}

func init() {
	pathsCmd.Flags().IntVar(&lineFlag, "line", 0, "Print the paths enclosing this 1-based line")
	for _, c := range []*cobra.Command{pathsCmd, resolveCmd, orphansCmd} {
		c.Flags().BoolVar(&jsonFlag, "json", false, "Print JSON")
	}
	rootCmd.AddCommand(pathsCmd, resolveCmd, orphansCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runPaths(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	a, err := sess.project.Analyze(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if lineFlag > 0 {
		paths := a.Result.PathsAt(lineFlag)
		if jsonFlag {
			if paths == nil {
				paths = []string{}
			}
			return printJSON(map[string]any{"file": a.File, "line": lineFlag, "paths": paths})
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	}
	if jsonFlag {
		return printJSON(map[string]any{"file": a.File, "language": a.Config.Language, "nodes": a.Result.Roots})
	}
	fmt.Print(a.Result.Format())
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	r, err := sess.project.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonFlag {
		return printJSON(r.Resolved)
	}
	if !r.Supported {
		fmt.Printf("%s: no language support, %d annotation(s) not resolved\n", r.File, countAnnotations(r.Annotations))
		return nil
	}
	for _, ra := range r.Resolved {
		if ra.Orphaned {
			fmt.Printf("%-30s ORPHANED  %s\n", ra.Path, ra.Annotation.Body)
			continue
		}
		fmt.Printf("%-30s L%d-%d  %s\n", ra.Path, ra.Node.StartLine, ra.Node.EndLine, ra.Annotation.Body)
	}
	fmt.Printf("\n%d annotation(s), %d orphaned\n", r.Report.Total, r.Report.OrphanCount)
	return nil
}

func countAnnotations[T any](m map[string][]T) int {
	n := 0
	for _, list := range m {
		n += len(list)
	}
	return n
}

func runOrphans(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	var reports []workspace.FileReport
	if len(args) == 1 {
		reports, err = sess.project.ScanFiles(cmd.Context(), args)
	} else {
		reports, err = sess.project.Scan(cmd.Context())
	}
	if err != nil {
		return err
	}
	if jsonFlag {
		return printJSON(reports)
	}

	total := 0
	for _, r := range reports {
		if r.Error != "" {
			fmt.Printf("%s: error: %s\n", r.File, r.Error)
			continue
		}
		total += r.OrphanCount
		printOrphans(r.File, r.Orphans)
	}
	fmt.Printf("%d orphaned annotation(s) in %d file(s)\n", total, len(reports))
	return nil
}

func printOrphans(file string, groups []orphan.Group) {
	for _, g := range groups {
		for _, a := range g.Annotations {
			fmt.Printf("%s  %s  [%s] %s\n", file, g.Path, a.ID, a.Body)
		}
	}
}
