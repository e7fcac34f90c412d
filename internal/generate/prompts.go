package generate

import "fmt"

const userMessage = "Please analyze the code and generate annotations."

func singleElementPrompt(filePath, semPath string) string {
	return fmt.Sprintf(`You are a code annotation assistant. Your task is to analyze one code element and write a clear, concise annotation for it.

File: %[1]s
Element to annotate (semantic path): %[2]s

Steps:
1. Call get_semantic_tree to see how the file is structured.
2. Call get_node_source with the semantic path %[2]q to read the element.
3. Call get_file_content for related files (imported types and the like) when you need more context.
4. Call save_annotations with exactly one annotation for %[2]q.

The annotation should:
- say what the element does and why it exists
- be 1-3 sentences long
- mention side effects or edge cases that matter
- not paraphrase the code line by line`, filePath, semPath)
}

func fileWidePrompt(filePath string) string {
	return fmt.Sprintf(`You are a code annotation assistant. Your task is to analyze a source file and annotate its key code elements.

File: %s

Steps:
1. Call get_semantic_tree to list the semantic elements of the file.
2. Call get_node_source to read the elements that matter.
3. Call get_file_content for related files when you need more context.
4. Call save_annotations with annotations for the most important elements.

Guidelines:
- Prefer exported functions, classes and the core logic.
- Skip trivial elements such as plain type aliases, re-exports or one-line constants unless they are surprising.
- Keep each annotation to 1-3 sentences.
- Describe purpose and behaviour rather than paraphrasing the code.
- Mention side effects, edge cases and design decisions worth knowing.`, filePath)
}
