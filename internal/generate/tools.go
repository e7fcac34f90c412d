package generate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/DeusData/syl/internal/semantic"
	"github.com/DeusData/syl/internal/workspace"
)

const maxFileChars = 20000

func tool(name, description, schema string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  json.RawMessage(schema),
		},
	}
}

var toolDefinitions = []openai.Tool{
	tool("get_semantic_tree",
		"Get the semantic tree of the file being annotated: its named code elements (functions, classes, variables and so on) with semantic paths, kinds and line ranges. Use it to learn the file structure before annotating.",
		`{"type":"object","properties":{}}`),
	tool("get_node_source",
		"Get the source code of one semantic node by path. Use it to read an element before writing its annotation.",
		`{"type":"object","properties":{"semantic_path":{"type":"string","description":"Semantic path of the node, e.g. 'MyClass.myMethod' or 'processData'"}},"required":["semantic_path"]}`),
	tool("get_file_content",
		"Read the full content of a project file. Use it to look at imports, dependencies or related code in other files.",
		`{"type":"object","properties":{"file_path":{"type":"string","description":"Path relative to the project root"}},"required":["file_path"]}`),
	tool("save_annotations",
		"Save annotations for one or more semantic paths once the code is analyzed. Each annotation should concisely describe what the element does, why, and anything important about it.",
		`{"type":"object","properties":{"annotations":{"type":"array","description":"Annotations to save","items":{"type":"object","properties":{"semantic_path":{"type":"string","description":"Semantic path of the code element"},"body":{"type":"string","description":"Annotation text, concise but informative"}},"required":["semantic_path","body"]}}},"required":["annotations"]}`),
}

// Entry is one annotation proposed through save_annotations.
type Entry struct {
	SemanticPath string `json:"semantic_path"`
	Body         string `json:"body"`
}

// toolbox executes tool calls against one analyzed file.
type toolbox struct {
	project *workspace.Project
	file    string
	content string
	result  *semantic.Result
	saved   []Entry
}

func (tb *toolbox) execute(name, arguments string) string {
	switch name {
	case "get_semantic_tree":
		return tb.semanticTree()
	case "get_node_source":
		var in struct {
			SemanticPath string `json:"semantic_path"`
		}
		if err := decodeArgs(arguments, &in); err != nil {
			return "Error: invalid arguments: " + err.Error()
		}
		return tb.nodeSource(in.SemanticPath)
	case "get_file_content":
		var in struct {
			FilePath string `json:"file_path"`
		}
		if err := decodeArgs(arguments, &in); err != nil {
			return "Error: invalid arguments: " + err.Error()
		}
		return tb.fileContent(in.FilePath)
	case "save_annotations":
		var in struct {
			Annotations []Entry `json:"annotations"`
		}
		if err := decodeArgs(arguments, &in); err != nil {
			return "Error: invalid arguments: " + err.Error()
		}
		return tb.save(in.Annotations)
	default:
		return "Unknown tool: " + name
	}
}

func decodeArgs(arguments string, v any) error {
	if arguments == "" {
		arguments = "{}"
	}
	return json.Unmarshal([]byte(arguments), v)
}

func (tb *toolbox) semanticTree() string {
	if len(tb.result.Roots) == 0 {
		return "No semantic nodes found in this file."
	}
	return fmt.Sprintf("Semantic tree for %s:\n\n%s", tb.file, tb.result.Format())
}

func (tb *toolbox) nodeSource(semPath string) string {
	n, ok := tb.result.Lookup(semPath)
	if !ok {
		return fmt.Sprintf("No node found at path %q. Use get_semantic_tree to see available paths.", semPath)
	}
	return fmt.Sprintf("Source for %s (%s, L%d-%d):\n\n%s", semPath, n.Kind, n.StartLine, n.EndLine, semantic.Source(n, tb.content))
}

func (tb *toolbox) fileContent(rel string) string {
	content, err := tb.project.ReadFile(rel)
	if errors.Is(err, workspace.ErrPathTraversal) {
		return "Error: path traversal not allowed"
	}
	if err != nil {
		return fmt.Sprintf("Error: could not read file %q", rel)
	}
	if r := []rune(content); len(r) > maxFileChars {
		content = string(r[:maxFileChars]) + "\n\n... (truncated)"
	}
	return fmt.Sprintf("Content of %s:\n\n%s", rel, content)
}

func (tb *toolbox) save(entries []Entry) string {
	if len(entries) == 0 {
		return "No annotations provided."
	}
	tb.saved = append(tb.saved, entries...)
	return fmt.Sprintf("Saved %d annotation(s).", len(entries))
}
