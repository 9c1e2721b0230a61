package session

import "strings"

// Kind enumerates the interactive commands. The set is closed; Execute
// switches exhaustively over it.
type Kind int

const (
	// Exit is produced by a blank line (and by EOF in the read loop).
	Exit Kind = iota
	Print
	ReviewSkim
	ReviewDeep
	ListAll
	ListUnreviewed
	Unknown
)

// Review mode labels recorded with each transition. Purely
// descriptive; skim and deep behave identically.
const (
	ModeSkim = "skim"
	ModeDeep = "deep"
)

// Command is one parsed input line.
type Command struct {
	Kind Kind

	// Selectors holds the raw 1-based index tokens following the
	// command word. Validation happens at execution time so invalid
	// tokens can be reported individually.
	Selectors []string

	// Word is the unrecognized command word, set for Unknown.
	Word string
}

// Parse tokenizes one input line into a Command.
func Parse(line string) Command {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Command{Kind: Exit}
	}

	word, selectors := fields[0], fields[1:]
	switch word {
	case "p", "print":
		return Command{Kind: Print, Selectors: selectors}
	case "rs", "review-skim":
		return Command{Kind: ReviewSkim, Selectors: selectors}
	case "rd", "review-deep":
		return Command{Kind: ReviewDeep, Selectors: selectors}
	case "ls", "list-all":
		return Command{Kind: ListAll}
	case "lsu", "list-unreviewed":
		return Command{Kind: ListUnreviewed}
	default:
		return Command{Kind: Unknown, Word: word}
	}
}
