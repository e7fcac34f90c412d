package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"
)

var authorFlag string

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "List, add, edit and remove annotations",
}

var annotateListCmd = &cobra.Command{
	Use:   "list <file> [semantic-path]",
	Short: "List the annotations of a file",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAnnotateList,
}

var annotateAddCmd = &cobra.Command{
	Use:   "add <file> <semantic-path> <body>",
	Short: "Attach a note to a semantic path",
	Args:  cobra.ExactArgs(3),
	RunE:  runAnnotateAdd,
}

var annotateEditCmd = &cobra.Command{
	Use:   "edit <file> <semantic-path> <id> <body>",
	Short: "Replace the body of an annotation",
	Args:  cobra.ExactArgs(4),
	RunE:  runAnnotateEdit,
}

var annotateRmCmd = &cobra.Command{
	Use:   "rm <file> <semantic-path> <id>",
	Short: "Delete an annotation",
	Args:  cobra.ExactArgs(3),
	RunE:  runAnnotateRm,
}

func init() {
	annotateAddCmd.Flags().StringVar(&authorFlag, "author", "", "Author name (default $USER)")
	annotateListCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print JSON")
	annotateCmd.AddCommand(annotateListCmd, annotateAddCmd, annotateEditCmd, annotateRmCmd)
	rootCmd.AddCommand(annotateCmd)
}

func defaultAuthor() string {
	if authorFlag != "" {
		return authorFlag
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "anonymous"
}

func runAnnotateList(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	f, err := sess.project.Store().Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		list := f.Annotations[args[1]]
		if jsonFlag {
			return printJSON(list)
		}
		for _, a := range list {
			fmt.Printf("[%s] %s (%s, %s)\n", a.ID, a.Body, a.Author, a.Updated.Format("2006-01-02 15:04"))
		}
		return nil
	}
	if jsonFlag {
		return printJSON(f)
	}
	for _, p := range f.Paths() {
		fmt.Println(p)
		for _, a := range f.Annotations[p] {
			fmt.Printf("  [%s] %s (%s)\n", a.ID, a.Body, a.Author)
		}
	}
	return nil
}

func runAnnotateAdd(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	file, semPath := args[0], args[1]
	if a, err := sess.project.Analyze(ctx, file); err == nil {
		if _, ok := a.Result.Lookup(semPath); !ok {
			fmt.Fprintf(os.Stderr, "warning: %q is not a semantic path of %s; the annotation will be orphaned\n", semPath, file)
		}
	}
	a, err := sess.project.Store().Add(ctx, file, semPath, args[2], defaultAuthor())
	if err != nil {
		return err
	}
	fmt.Println(a.ID)
	return nil
}

func runAnnotateEdit(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	a, err := sess.project.Store().Update(cmd.Context(), args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	fmt.Printf("updated %s at %s\n", a.ID, a.Updated.Format("2006-01-02 15:04:05"))
	return nil
}

func runAnnotateRm(cmd *cobra.Command, args []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	removed, err := sess.project.Store().Remove(cmd.Context(), args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("annotation %s not found under %s in %s", args[2], args[1], args[0])
	}
	fmt.Println("deleted", args[2])
	return nil
}
