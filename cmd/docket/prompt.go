package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"docket/internal/store"
)

// interactiveTerminal reports whether the reader is a terminal a user can
// answer prompts on. Piped and redirected input never prompts.
func interactiveTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// promptYesNo asks a yes/no question. A blank answer means no.
func promptYesNo(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := readAnswer(in)
	if err != nil {
		return false, err
	}
	switch answer {
	case "y", "yes":
		return true, nil
	case "", "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized answer %q", answer)
	}
}

// promptStorePolicy asks how to treat a store that already exists. Cancelling
// keeps the error policy, so the run aborts with the usual conflict message.
func promptStorePolicy(in io.Reader, out io.Writer, path string) (store.Policy, error) {
	fmt.Fprintf(out, "Store %s already exists. [a]ppend, [o]verwrite, or [c]ancel: ", path)
	answer, err := readAnswer(in)
	if err != nil {
		return "", err
	}
	switch answer {
	case "a", "append":
		return store.PolicyAppend, nil
	case "o", "overwrite":
		return store.PolicyOverwrite, nil
	case "", "c", "cancel":
		return store.PolicyError, nil
	default:
		return "", fmt.Errorf("unrecognized answer %q", answer)
	}
}

func readAnswer(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// confirmWorkbookReplace asks an interactive user whether an existing
// workbook may be replaced. Declining returns an error so the caller aborts
// before any other work; a missing file or non-interactive input reports
// false and leaves the decision to the export path itself.
func confirmWorkbookReplace(cmd *cobra.Command, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	in := cmd.InOrStdin()
	if !interactiveTerminal(in) {
		return false, nil
	}
	replace, err := promptYesNo(in, cmd.ErrOrStderr(), fmt.Sprintf("Workbook %s already exists. Replace it?", path))
	if err != nil {
		return false, err
	}
	if !replace {
		return false, fmt.Errorf("workbook %s already exists", path)
	}
	return true, nil
}
