package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"cares/internal/config"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "score",
		short: "Score a saved questionnaire",
		usage: "caresctl score <answers.json>",
		long: `Read answers from a JSON file ("-" for stdin) and print the scores.

The file holds either an array of {"qid", "option"} objects or a full
assessment request with child_name, child_age and answers.
`,
		run: runScore,
	},
	{
		name:  "extract",
		short: "Recover the JSON object from model output",
		usage: "caresctl extract <file>",
		long: `Run the extraction chain over a text file ("-" for stdin) and print
the matching strategy and the recovered object.
`,
		run: runExtract,
	},
	{
		name:  "quiz",
		short: "Answer the questionnaire in the terminal",
		usage: "caresctl quiz [report.pdf]",
		long: `Walk through all questions interactively, then print the scores and
the synthesized report. No generator is called and nothing is stored.

With a file argument the report is also written as a PDF.
`,
		run: runQuiz,
	},
	{
		name:  "mcp",
		short: "Serve the scoring tools over MCP stdio",
		usage: "caresctl mcp",
		long: `Start an MCP server on stdin/stdout exposing compute_scores,
extract_structured and synthesize_report.
`,
		run: runMCP,
	},
}

// stdout is where command output goes
var stdout io.Writer = os.Stdout

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "caresctl: offline tools for the CARES questionnaire\n\n")
	fmt.Fprintf(w, "Usage:\n  caresctl <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'caresctl help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "caresctl: unknown command %q\n\nRun 'caresctl help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(stdout, args[1])
		} else {
			printUsage(stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'caresctl help' for usage.", args[0])
}

// readInput reads a file, or stdin for "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func main() {
	config.LoadDotEnv()
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
