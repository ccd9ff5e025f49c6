package conflict

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DecisionProvider decides what happens to one conflicting target path.
type DecisionProvider interface {
	Decide(path string) (Decision, error)
}

// AutoProvider always answers with a fixed policy; it is the provider for
// non-interactive contexts. The documented default policy is KeepBoth.
type AutoProvider struct {
	Policy Decision
}

func NewAutoProvider(policy Decision) *AutoProvider {
	return &AutoProvider{Policy: policy}
}

func (p *AutoProvider) Decide(string) (Decision, error) {
	return p.Policy, nil
}

// PromptProvider asks on a terminal. It keeps prompting until it reads a
// recognized answer or input ends; EOF degrades to KeepBoth so a closed
// stdin cannot wedge a restore.
type PromptProvider struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func NewPromptProvider(in io.Reader, out io.Writer) *PromptProvider {
	return &PromptProvider{In: in, Out: out, reader: bufio.NewReader(in)}
}

func (p *PromptProvider) Decide(path string) (Decision, error) {
	for {
		fmt.Fprintf(p.Out, "%s already exists: [r]eplace, [s]kip, [k]eep both? ", path)
		line, err := p.reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "r", "replace":
			return Replace, nil
		case "s", "skip":
			return Skip, nil
		case "k", "keep", "keep both":
			return KeepBoth, nil
		}
		if err != nil {
			// Input ended mid-prompt; fall back to the safe default.
			return KeepBoth, nil
		}
	}
}
